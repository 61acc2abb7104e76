package decoder

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvBatch is how many data rows share one heading.
const csvBatch = 20

// CSVDecoder lays a table out as text: every batch of rows gets a bold
// "Rows a-b" heading and each row becomes a "header: cell" line.
type CSVDecoder struct{}

func (d *CSVDecoder) Decode(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	f := newFlow()
	if len(records) == 0 {
		return f.document(filename), nil
	}

	headers := records[0]
	f.add(strings.Join(headers, ", "), style{size: headingSize(3), bold: true})

	rows := records[1:]
	for i := 0; i < len(rows); i += csvBatch {
		end := min(i+csvBatch, len(rows))
		// 1-indexed, counting the header row.
		f.add(fmt.Sprintf("Rows %d-%d", i+2, end+1), style{size: headingSize(4), bold: true})
		for _, row := range rows[i:end] {
			f.add(csvLine(headers, row), style{size: bodySize})
		}
	}
	return f.document(filename), nil
}

func csvLine(headers, row []string) string {
	cells := make([]string, 0, len(row))
	for j, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if j < len(headers) && headers[j] != "" {
			cells = append(cells, headers[j]+": "+cell)
		} else {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, ", ")
}
