package series

import (
	"fmt"
	"sort"
)

// MinCubeYear is the first year kept from SIDRA cubes (the index base is December 1993).
const MinCubeYear = 1994

// Observation is one SIDRA record: a period code, a measure name and its value.
type Observation struct {
	PeriodCode string `json:"D2C"`
	Measure    string `json:"D3N"`
	Value      string `json:"V"`
}

// NormalizeObservations pivots SIDRA observations into one row per month, keeping
// periods from minYear onward. The index column is truncated to two decimals.
func NormalizeObservations(observations []Observation, minYear int) (*Table, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: no observations", ErrStructuralParse)
	}

	cells := make(map[Period]map[string]string)
	sawIndex := false
	for _, obs := range observations {
		period, err := ParsePeriod(obs.PeriodCode)
		if err != nil {
			return nil, err
		}
		column := measureColumn(obs.Measure)
		if column == ColumnIndex {
			sawIndex = true
		}
		byColumn, ok := cells[period]
		if !ok {
			byColumn = make(map[string]string, len(cubeColumns))
			cells[period] = byColumn
		}
		if _, seen := byColumn[column]; !seen {
			byColumn[column] = obs.Value
		}
	}
	if !sawIndex {
		return nil, fmt.Errorf("%w: measure %q not found", ErrStructuralParse, ColumnIndex)
	}

	periods := make([]Period, 0, len(cells))
	for p := range cells {
		if p.Year >= minYear {
			periods = append(periods, p)
		}
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("%w: no observations from %d onward", ErrStructuralParse, minYear)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	table := &Table{
		Fields:  append([]string(nil), cubeColumns...),
		Monthly: true,
		Rows:    make([]Row, 0, len(periods)),
	}
	for _, p := range periods {
		row, err := cubeRow(p, cells[p])
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", p, err)
		}
		table.Rows = append(table.Rows, row)
	}
	table.Latest = periods[len(periods)-1]
	return table, nil
}

func cubeRow(p Period, byColumn map[string]string) (Row, error) {
	label, _ := MonthAbbreviation(p.Month)
	values := make([]string, len(cubeColumns))
	for i, column := range cubeColumns {
		raw, ok := byColumn[column]
		if !ok {
			continue
		}
		var (
			v   string
			err error
		)
		if column == ColumnIndex {
			v, err = TruncateValue(raw)
		} else {
			v, err = ParseValue(raw)
		}
		if err != nil {
			return Row{}, err
		}
		values[i] = v
	}
	return Row{Year: p.Year, Month: p.Month, PeriodLabel: label, Values: values}, nil
}
