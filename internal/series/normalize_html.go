package series

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type monthColumn struct {
	field int
	month int
}

// NormalizeRows builds a Table from a year-per-row layout. rows[0] is the header; every
// following row starts with the year cell and continues with one cell per column.
func NormalizeRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("%w: table header missing", ErrStructuralParse)
	}
	header := rows[0]
	fields := make([]string, 0, len(header)-1)
	for _, label := range header[1:] {
		fields = append(fields, CanonicalColumn(label))
	}
	months := resolveMonthColumns(header[1:])

	table := &Table{Fields: fields}
	for i, cells := range rows[1:] {
		if len(cells) == 0 {
			continue
		}
		if len(cells) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d",
				ErrStructuralParse, i+1, len(cells), len(header))
		}
		row, err := normalizeYearRow(cells, len(fields))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		table.Rows = append(table.Rows, row)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: table has no data rows", ErrStructuralParse)
	}
	sort.SliceStable(table.Rows, func(a, b int) bool {
		return table.Rows[a].Year < table.Rows[b].Year
	})

	latest, err := latestInYearRow(table.Rows[len(table.Rows)-1], months)
	if err != nil {
		return nil, err
	}
	table.Latest = latest
	return table, nil
}

func normalizeYearRow(cells []string, width int) (Row, error) {
	yearCell := strings.TrimSpace(cells[0])
	year, err := strconv.Atoi(yearCell)
	if err != nil {
		return Row{}, fmt.Errorf("%w: year %q", ErrValueFormat, cells[0])
	}
	values := make([]string, width)
	for j, cell := range cells[1:] {
		v, err := ParseValue(cell)
		if err != nil {
			return Row{}, err
		}
		values[j] = v
	}
	return Row{Year: year, Values: values}, nil
}

// resolveMonthColumns finds month columns by header label, falling back to position
// when no label is recognized.
func resolveMonthColumns(labels []string) []monthColumn {
	var months []monthColumn
	for i, label := range labels {
		if m, ok := MonthNumber(label); ok {
			months = append(months, monthColumn{field: i, month: m})
		}
	}
	if len(months) > 0 {
		return months
	}
	for i := range labels {
		if i >= 12 {
			break
		}
		months = append(months, monthColumn{field: i, month: i + 1})
	}
	return months
}

// latestInYearRow scans month cells left to right; the month before the first empty
// cell is the latest usable period. A fully populated row yields its final month.
func latestInYearRow(row Row, months []monthColumn) (Period, error) {
	if len(months) == 0 {
		return Period{}, fmt.Errorf("%w: no month columns", ErrStructuralParse)
	}
	for k, col := range months {
		if row.Values[col.field] != "" {
			continue
		}
		if k == 0 {
			return Period{Year: row.Year, Month: col.month}.Previous(), nil
		}
		return Period{Year: row.Year, Month: months[k-1].month}, nil
	}
	return Period{Year: row.Year, Month: months[len(months)-1].month}, nil
}
