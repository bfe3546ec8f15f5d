// Package manifest parses the batch listing that names each scanned form
// file and the form-type code its layout follows.
package manifest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Record identifies one scanned form inside a batch archive.
type Record struct {
	FileName   string `json:"fileName"`
	FormNumber string `json:"formNumber"`
}

// Parse reads a two-column CSV listing of (file name, form number). A header
// row is detected by its first column and skipped. Rows with fewer than two
// columns or an empty file name are ignored rather than failing the batch.
func Parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		formNumber := strings.TrimSpace(row[1])
		if name == "" {
			continue
		}
		if i == 0 && isHeader(name) {
			continue
		}
		records = append(records, Record{FileName: name, FormNumber: formNumber})
	}
	return records, nil
}

func isHeader(firstColumn string) bool {
	switch strings.ToLower(firstColumn) {
	case "file", "filename", "file name", "file_name":
		return true
	}
	return false
}
