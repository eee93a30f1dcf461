package series

import (
	"strconv"
	"strings"
)

// Canonical column names shared by every emitted table.
const (
	ColumnYear  = "ANO"
	ColumnMonth = "MES"

	ColumnIndex        = "NUMERO INDICE(DEZ 93 = 100)"
	ColumnMonthly      = "NO MES"
	ColumnThreeMonths  = "3 MESES"
	ColumnSixMonths    = "6 MESES"
	ColumnYearToDate   = "NO ANO"
	ColumnTwelveMonths = "12 MESES"
)

// cubeColumns is the fixed header of every SIDRA-sourced table after ANO and MES.
var cubeColumns = []string{
	ColumnIndex,
	ColumnMonthly,
	ColumnThreeMonths,
	ColumnSixMonths,
	ColumnYearToDate,
	ColumnTwelveMonths,
}

// canonicalLabels maps source labels (uppercased) to canonical column names.
var canonicalLabels = map[string]string{
	"NÚMERO-ÍNDICE (BASE: DEZEMBRO DE 1993 = 100)": ColumnIndex,
	"VARIAÇÃO MENSAL":                ColumnMonthly,
	"VARIAÇÃO ACUMULADA EM 3 MESES":  ColumnThreeMonths,
	"VARIAÇÃO ACUMULADA EM 6 MESES":  ColumnSixMonths,
	"VARIAÇÃO ACUMULADA NO ANO":      ColumnYearToDate,
	"VARIAÇÃO ACUMULADA EM 12 MESES": ColumnTwelveMonths,
	"ACUMULADO NO ANO":               ColumnYearToDate,
	"ACUMULADO EM 12 MESES":          ColumnTwelveMonths,
	"ACUMULADO 12 MESES":             ColumnTwelveMonths,
	"JANEIRO":                        "JAN",
	"FEVEREIRO":                      "FEV",
	"MARÇO":                          "MAR",
	"MARCO":                          "MAR",
	"ABRIL":                          "ABR",
	"MAIO":                           "MAI",
	"JUNHO":                          "JUN",
	"JULHO":                          "JUL",
	"AGOSTO":                         "AGO",
	"SETEMBRO":                       "SET",
	"OUTUBRO":                        "OUT",
	"NOVEMBRO":                       "NOV",
	"DEZEMBRO":                       "DEZ",
}

var monthAbbreviations = [...]string{
	"JAN", "FEV", "MAR", "ABR", "MAI", "JUN",
	"JUL", "AGO", "SET", "OUT", "NOV", "DEZ",
}

// englishMonths covers labels that differ from the Portuguese abbreviations.
var englishMonths = map[string]int{
	"FEB": 2, "APR": 4, "MAY": 5, "AUG": 8, "SEP": 9, "OCT": 10, "DEC": 12,
}

// CanonicalColumn maps a source header label to its canonical name. Labels without a
// mapping are returned uppercased and trimmed.
func CanonicalColumn(label string) string {
	upper := strings.ToUpper(strings.Join(strings.Fields(label), " "))
	if mapped, ok := canonicalLabels[upper]; ok {
		return mapped
	}
	return upper
}

// MonthAbbreviation returns the 3-letter uppercase abbreviation for month 1..12.
func MonthAbbreviation(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return monthAbbreviations[month-1], true
}

// MonthNumber recognizes a header label as a month column.
func MonthNumber(label string) (int, bool) {
	canonical := CanonicalColumn(label)
	if n, err := strconv.Atoi(canonical); err == nil {
		if n >= 1 && n <= 12 {
			return n, true
		}
		return 0, false
	}
	for i, abbr := range monthAbbreviations {
		if canonical == abbr {
			return i + 1, true
		}
	}
	if n, ok := englishMonths[canonical]; ok {
		return n, true
	}
	return 0, false
}

// measureColumn reduces a SIDRA measure name ("IPCA - Variação mensal") to its canonical column.
func measureColumn(measure string) string {
	parts := strings.Split(measure, " - ")
	return CanonicalColumn(parts[len(parts)-1])
}
