package export

import (
	"creditcounter/internal/syllabus"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of a workbook, usually one department.
type Sheet struct {
	Name    string
	Records []syllabus.SubjectRecord
}

// XLSXFileName is the workbook holding every department of a year.
func XLSXFileName(year string) string {
	return fmt.Sprintf("catalog_%s.xlsx", year)
}

// WriteXLSX writes a workbook with one sheet per entry, each with the same columns as the
// csv output. Grades are written as numbers.
func WriteXLSX(w io.Writer, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		var err error
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.Name)
		} else {
			_, err = f.NewSheet(sheet.Name)
		}
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet.Name, err)
		}

		err = writeSheet(f, sheet)
		if err != nil {
			return fmt.Errorf("write sheet %s: %w", sheet.Name, err)
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	header := make([]any, len(CSVHeader))
	for i, h := range CSVHeader {
		header[i] = h
	}
	err := f.SetSheetRow(sheet.Name, "A1", &header)
	if err != nil {
		return err
	}

	for i, r := range sheet.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.ID, r.Name, r.Grade, r.CategoryText, r.RequirementText, r.CreditUnits}
		err = f.SetSheetRow(sheet.Name, cell, &row)
		if err != nil {
			return err
		}
	}

	return f.SetPanes(sheet.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
