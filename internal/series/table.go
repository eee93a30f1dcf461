package series

import "strconv"

// Row is one observation of a series. Values align with Table.Fields.
type Row struct {
	Year        int
	Month       int
	PeriodLabel string
	Values      []string
}

// Table is a series' full observed history, sorted by (Year, Month) ascending.
type Table struct {
	// Fields are the value columns that follow the period columns.
	Fields []string
	// Monthly is set when every row is one month and carries a MES column.
	Monthly bool
	Rows    []Row
	// Latest is the most recent fully populated reference period.
	Latest Period
}

// Header returns the full header row with canonical names.
func (t *Table) Header() []string {
	header := make([]string, 0, len(t.Fields)+2)
	header = append(header, ColumnYear)
	if t.Monthly {
		header = append(header, ColumnMonth)
	}
	return append(header, t.Fields...)
}

// Records returns the header followed by every data row, ready for CSV emission.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header())
	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Values)+2)
		record = append(record, strconv.Itoa(row.Year))
		if t.Monthly {
			record = append(record, row.PeriodLabel)
		}
		records = append(records, append(record, row.Values...))
	}
	return records
}
