// Package artifact renders series tables as CSV payloads and names the objects they are
// stored under.
package artifact

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// ContentType is attached to every uploaded CSV snapshot.
const ContentType = "text/csv; charset=utf-8"

// Delimiter separates CSV fields in every snapshot.
const Delimiter = ';'

// EncodeCSV serializes the table header and rows into an in-memory CSV buffer.
func EncodeCSV(table *series.Table) ([]byte, error) {
	if table == nil {
		return nil, fmt.Errorf("encode csv: table is nil")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter
	if err := w.WriteAll(table.Records()); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
