package catalog

import (
	"context"
	"creditcounter/internal/components/assert"
	"creditcounter/internal/components/chrono"
	"creditcounter/internal/components/telemetry"
	"creditcounter/internal/syllabus"
	"errors"
	"time"
)

const (
	report_runner_department = "runner.department"
	report_runner_failed     = "runner.failed"
)

// PageSource fetches the syllabus page of a department.
type PageSource interface {
	FetchPage(ctx context.Context, dept syllabus.Department, year string) (syllabus.Page, error)
}

type Options struct {
	Tokens             syllabus.Tokens
	SkipHeader         bool
	Scheme             syllabus.IdentifierScheme
	ClampGradeOverflow bool
}

// DepartmentResult is the outcome of one department, Err is set when either the fetch or
// the extraction failed.
type DepartmentResult struct {
	Department syllabus.Department
	Year       string
	Records    []syllabus.SubjectRecord
	FetchedAt  time.Time
	Err        error
}

// Runner fetches and extracts departments one after another.
type Runner struct {
	source    PageSource
	extractor syllabus.Extractor
	opts      Options
	clock     chrono.API
	tel       telemetry.API
}

func NewRunner(source PageSource, opts Options, clock chrono.API, tel telemetry.API) Runner {
	assert.NotNil(source)
	assert.NotNil(clock)
	assert.NotNil(tel)

	return Runner{
		source:    source,
		extractor: syllabus.NewExtractor(tel),
		opts:      opts,
		clock:     clock,
		tel:       telemetry.NewScopedAPI("catalog", tel),
	}
}

// RunDepartment fetches and extracts a single department.
func (r Runner) RunDepartment(ctx context.Context, dept syllabus.Department, year string) DepartmentResult {
	result := DepartmentResult{Department: dept, Year: year, FetchedAt: r.clock.Now()}

	page, err := r.source.FetchPage(ctx, dept, year)
	if err != nil {
		result.Err = &syllabus.DepartmentError{Department: dept, Year: year, Err: err}
		return result
	}

	result.Records, result.Err = r.extractor.Extract(ctx, page, syllabus.ExtractOptions{
		Department:         dept,
		Year:               year,
		Tokens:             r.opts.Tokens,
		SkipHeader:         r.opts.SkipHeader,
		Scheme:             r.opts.Scheme,
		ClampGradeOverflow: r.opts.ClampGradeOverflow,
	})
	return result
}

// Run processes every department in order, a failed department does not stop the ones
// after it. The returned error joins the errors of every failed department, or is the
// context's error if it was canceled midway (the departments not reached get no result).
func (r Runner) Run(ctx context.Context, departments []syllabus.Department, year string) ([]DepartmentResult, error) {
	results := make([]DepartmentResult, 0, len(departments))
	var errs []error
	for _, dept := range departments {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		result := r.RunDepartment(ctx, dept, year)
		results = append(results, result)
		if result.Err != nil {
			r.tel.ReportWarning(report_runner_department, result.Err)
			errs = append(errs, result.Err)
			continue
		}
		r.tel.ReportDebug(report_runner_department, dept.Letter, year, len(result.Records))
	}

	r.tel.ReportCount(report_runner_failed, int64(len(errs)))
	return results, errors.Join(errs...)
}
