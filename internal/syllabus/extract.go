package syllabus

import (
	"context"
	"creditcounter/internal/components/telemetry"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("internal/syllabus")

const (
	report_extractor_extract = "extractor.extract"
	report_extractor_records = "extractor.records"
)

type ExtractOptions struct {
	Department Department
	Year       string

	Tokens             Tokens
	SkipHeader         bool
	Scheme             IdentifierScheme
	ClampGradeOverflow bool
}

// Extractor turns a parsed page into catalog records.
type Extractor struct {
	tel telemetry.API
}

func NewExtractor(tel telemetry.API) Extractor {
	return Extractor{tel: telemetry.NewScopedAPI("syllabus", tel)}
}

// Extract runs the name extractor, field scanner and grade grouper over the page and
// assembles their output. Errors are wrapped in a DepartmentError.
func (e Extractor) Extract(ctx context.Context, page Page, opts ExtractOptions) ([]SubjectRecord, error) {
	_, span := tracer.Start(ctx, "Extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("department", opts.Department.Letter),
		attribute.String("year", opts.Year),
	)

	fail := func(err error) ([]SubjectRecord, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.tel.ReportBroken(report_extractor_extract, err, opts.Department.Letter, opts.Year)
		return nil, &DepartmentError{Department: opts.Department, Year: opts.Year, Err: err}
	}

	names := page.SubjectNames()
	fields := ScanFields(page.Cells(), ScanOptions{
		Tokens:           opts.Tokens,
		SkipHeader:       opts.SkipHeader,
		DepartmentLetter: opts.Department.Letter,
		Year:             opts.Year,
	})
	grades, err := GroupGrades(page.GradeGrid(), GroupOptions{
		ClampOverflow: opts.ClampGradeOverflow,
	})
	if err != nil {
		return fail(err)
	}

	seq := Sequences{Names: names, Grades: grades, Fields: fields}
	for field, extra := range seq.Surplus() {
		e.tel.ReportWarning(
			report_extractor_extract,
			fmt.Errorf("%s has %d more entries than there are subjects", field, extra),
			opts.Department.Letter,
			opts.Year,
		)
	}

	records, err := Assemble(seq, AssembleOptions{
		DepartmentLetter: opts.Department.Letter,
		Year:             opts.Year,
		Scheme:           opts.Scheme,
		Tokens:           opts.Tokens,
	})
	if err != nil {
		return fail(err)
	}

	e.tel.ReportCount(report_extractor_records, int64(len(records)))
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
