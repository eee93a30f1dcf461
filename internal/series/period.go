package series

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a month-granular reference period.
type Period struct {
	Year  int
	Month int
}

// ParsePeriod accepts "YYYY-MM" or "YYYYMM".
func ParsePeriod(raw string) (Period, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")
	if len(s) != 6 {
		return Period{}, fmt.Errorf("%w: period %q", ErrValueFormat, raw)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q", ErrValueFormat, raw)
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: period %q", ErrValueFormat, raw)
	}
	return Period{Year: year, Month: month}, nil
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// String renders the period as YYYY-MM, the form kept in the state store.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Compact renders the period as YYYYMM, the form embedded in object keys.
func (p Period) Compact() string {
	return fmt.Sprintf("%04d%02d", p.Year, p.Month)
}

// Previous returns the month immediately before p.
func (p Period) Previous() Period {
	if p.Month <= 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}
