package series

import "errors"

var (
	// ErrStructuralParse reports that the expected table structure was missing or empty.
	ErrStructuralParse = errors.New("structural parse error")
	// ErrValueFormat reports a cell that could not be coerced to the expected numeric shape.
	ErrValueFormat = errors.New("value format error")
)
