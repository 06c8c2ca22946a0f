package export

import (
	"fmt"
	"regexp"

	"github.com/xuri/excelize/v2"

	"dataclassification/entity"
)

const defaultSheet = "Sheet1"

var illegalChars = regexp.MustCompile(`[^\x20-\x7E]`)

// Sanitize drops every character outside printable ASCII.
func Sanitize(s string) string {
	return illegalChars.ReplaceAllString(s, "")
}

// SheetNames returns the sheets needed for rows data rows: "Sheet1" when
// they fit in one sheet, otherwise Sheet_1, Sheet_2, ...
func SheetNames(rows, maxRowsPerSheet int) []string {
	if maxRowsPerSheet <= 0 || rows <= maxRowsPerSheet {
		return []string{defaultSheet}
	}
	n := (rows + maxRowsPerSheet - 1) / maxRowsPerSheet
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Sheet_%d", i+1)
	}
	return names
}

// WriteXLSX writes records to path, at most maxRowsPerSheet data rows per
// sheet, each sheet starting with the header row.
func WriteXLSX(path string, records []entity.ActivityRecord, maxRowsPerSheet int) error {
	f := excelize.NewFile()
	defer f.Close()

	names := SheetNames(len(records), maxRowsPerSheet)
	for i, name := range names {
		if i == 0 {
			if name != defaultSheet {
				if err := f.SetSheetName(defaultSheet, name); err != nil {
					return fmt.Errorf("WriteXLSX: %w", err)
				}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("WriteXLSX: %w", err)
		}

		chunk := records
		if len(names) > 1 {
			start := i * maxRowsPerSheet
			chunk = records[start:min(start+maxRowsPerSheet, len(records))]
		}

		if err := writeSheet(f, name, chunk); err != nil {
			return fmt.Errorf("WriteXLSX: sheet %s: %w", name, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("WriteXLSX: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, records []entity.ActivityRecord) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i := range records {
		row := values(records[i])
		for j, v := range row {
			if s, ok := v.(string); ok {
				row[j] = Sanitize(s)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}
