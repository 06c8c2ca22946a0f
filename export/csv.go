package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"dataclassification/entity"
)

// WriteCSV writes records with a header row to path, UTF-8, unsanitized.
func WriteCSV(path string, records []entity.ActivityRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for i := range records {
		if err := w.Write(stringValues(records[i])); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return f.Close()
}
