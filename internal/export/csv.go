package export

import (
	"creditcounter/internal/syllabus"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

var (
	CSVHeader = []string{"ID", "Name", "Grade", "Category", "Requirement", "CreditUnits"}
	// files written by earlier versions of the scraper use Japanese column names.
	legacyCSVHeader = []string{"ID", "教科名", "学年", "科目", "区分", "単位数"}
)

var ErrMalformedCSV = errors.New("malformed catalog csv")

// CSVFileName is the file a department's catalog is written to.
func CSVFileName(departmentLetter, year string) string {
	return fmt.Sprintf("%s_%s.csv", departmentLetter, year)
}

// WriteCSV writes one line per record after the header. Category and requirement are
// written as they appeared on the page.
func WriteCSV(w io.Writer, records []syllabus.SubjectRecord) error {
	writer := csv.NewWriter(w)

	err := writer.Write(CSVHeader)
	if err != nil {
		return err
	}
	for _, r := range records {
		err = writer.Write([]string{
			r.ID,
			r.Name,
			strconv.Itoa(r.Grade),
			r.CategoryText,
			r.RequirementText,
			r.CreditUnits,
		})
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a file written by WriteCSV, category and requirement are classified
// again with the given tokens.
func ReadCSV(r io.Reader, tokens syllabus.Tokens) ([]syllabus.SubjectRecord, error) {
	tokens = tokens.WithDefaults()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(CSVHeader)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if !slices.Equal(header, CSVHeader) && !slices.Equal(header, legacyCSVHeader) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrMalformedCSV, header)
	}

	var records []syllabus.SubjectRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		grade, err := strconv.Atoi(row[2])
		if err != nil || grade < 1 || grade > syllabus.MaxGrade {
			line, _ := reader.FieldPos(2)
			return nil, fmt.Errorf("%w: line %d: invalid grade %q", ErrMalformedCSV, line, row[2])
		}

		records = append(records, syllabus.SubjectRecord{
			ID:              row[0],
			Name:            row[1],
			Grade:           grade,
			Category:        tokens.Category(row[3]),
			CategoryText:    row[3],
			Requirement:     tokens.Requirement(row[4]),
			RequirementText: row[4],
			CreditUnits:     row[5],
		})
	}
	return records, nil
}
