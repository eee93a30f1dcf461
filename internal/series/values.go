package series

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// placeholders are the markers sources use for "no data yet".
var placeholders = map[string]struct{}{
	"-":   {},
	"—":   {},
	"–":   {},
	"..":  {},
	"...": {},
}

// IsPlaceholder reports whether a cell carries an explicit "no data" marker.
func IsPlaceholder(cell string) bool {
	trimmed := strings.TrimFunc(cell, unicode.IsSpace)
	if trimmed == "" {
		return true
	}
	_, ok := placeholders[trimmed]
	return ok
}

// ParseValue normalizes a locale-formatted numeric cell into a fixed two-decimal string.
// Placeholders become "".
func ParseValue(cell string) (string, error) {
	if IsPlaceholder(cell) {
		return "", nil
	}
	v, _, err := parseNumber(cell)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(v, 'f', 2, 64), nil
}

// TruncateValue keeps the first two decimal digits of a numeric cell without rounding.
// Placeholders become "".
func TruncateValue(cell string) (string, error) {
	if IsPlaceholder(cell) {
		return "", nil
	}
	v, normalized, err := parseNumber(cell)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(normalized, "eE") {
		normalized = strconv.FormatFloat(v, 'f', -1, 64)
	}
	whole, frac, _ := strings.Cut(normalized, ".")
	if whole == "" || whole == "+" || whole == "-" {
		whole += "0"
	}
	whole = strings.TrimPrefix(whole, "+")
	frac = (frac + "00")[:2]
	return whole + "." + frac, nil
}

func parseNumber(cell string) (float64, string, error) {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		if r == ',' {
			return '.'
		}
		return r
	}, cell)
	// ParseFloat also takes hex mantissas like 0x1p-2; cells are decimal only.
	if strings.ContainsAny(normalized, "xXpP") {
		return 0, "", fmt.Errorf("%w: cell %q", ErrValueFormat, cell)
	}
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, "", fmt.Errorf("%w: cell %q", ErrValueFormat, cell)
	}
	return v, normalized, nil
}
