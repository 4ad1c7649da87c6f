package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files. Rows are grouped into batches and emitted as
// Table elements so downstream chunking keeps related rows together.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]RawElement, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var b builder
	if len(records) == 0 {
		return b.elements, nil
	}

	// First row is headers.
	headers := records[0]

	// Group rows into batches of 20 for manageable elements.
	const batchSize = 20
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += batchSize {
		end := i + batchSize
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
		for _, row := range batch {
			for j, cell := range row {
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
				if j < len(row)-1 {
					text.WriteString(", ")
				}
			}
			text.WriteString("\n")
		}

		b.add(CategoryTable, text.String(), 0)
	}

	return b.elements, nil
}
