package excel

import (
	"math"
	"strconv"
	"strings"
	"time"

	"goinsight/domain/dataset"
)

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2006-01",
}

var currencySymbols = []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY"}

// TypeAnalysis contains the results of a column's type distribution analysis
type TypeAnalysis struct {
	ValidCount     int
	NumericCount   int
	IntegerCount   int
	YearCount      int
	TimestampCount int
	NumericRatio   float64
	TimestampRatio float64
	YearRatio      float64
}

// AnalyzeColumn counts how many non-blank cells parse as each candidate type
func AnalyzeColumn(cells []string, cfg InferenceConfig) TypeAnalysis {
	var a TypeAnalysis
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		a.ValidCount++
		if v, ok := ParseNumeric(cell); ok {
			a.NumericCount++
			if v == math.Trunc(v) {
				a.IntegerCount++
				if int(v) >= cfg.MinYear && int(v) <= cfg.MaxYear && !strings.ContainsAny(cell, ".,") {
					a.YearCount++
				}
			}
		}
		if _, ok := ParseTimestamp(cell); ok {
			a.TimestampCount++
		}
	}
	if a.ValidCount > 0 {
		n := float64(a.ValidCount)
		a.NumericRatio = float64(a.NumericCount) / n
		a.TimestampRatio = float64(a.TimestampCount) / n
		a.YearRatio = float64(a.YearCount) / n
	}
	return a
}

// InferFieldType picks the field type for a column. Integer columns named like a
// year whose values all fall in the year range are temporal.
func InferFieldType(header string, a TypeAnalysis, cfg InferenceConfig) dataset.FieldType {
	if a.ValidCount == 0 {
		return dataset.TypeNominal
	}
	if a.YearRatio == 1 && looksLikeYear(header) {
		return dataset.TypeTemporal
	}
	if a.NumericRatio >= cfg.NumericThreshold {
		return dataset.TypeQuantitative
	}
	if a.TimestampRatio >= cfg.TimestampThreshold {
		return dataset.TypeTemporal
	}
	return dataset.TypeNominal
}

func looksLikeYear(header string) bool {
	h := strings.ToLower(header)
	return strings.Contains(h, "year") || h == "yr" || h == "fy"
}

// CoerceCell converts a raw cell to the record value for its field type.
// Blank cells and unparseable measure cells become nil.
func CoerceCell(cell string, typ dataset.FieldType) interface{} {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	if typ == dataset.TypeQuantitative {
		if v, ok := ParseNumeric(cell); ok {
			return v
		}
		return nil
	}
	return cell
}

// ParseNumeric parses a number, accepting currency symbols, percent signs,
// parentheses for negatives and European decimal commas
func ParseNumeric(s string) (float64, bool) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = strings.TrimSuffix(strings.TrimPrefix(clean, "("), ")")
		negative = true
	}
	for _, symbol := range currencySymbols {
		clean = strings.ReplaceAll(clean, symbol, "")
	}
	clean = strings.TrimSpace(strings.ReplaceAll(clean, "%", ""))

	hasComma := strings.Contains(clean, ",")
	hasPeriod := strings.Contains(clean, ".")
	hasSpace := strings.Contains(clean, " ")
	switch {
	case hasComma && (hasPeriod || hasSpace):
		after := clean[strings.LastIndex(clean, ",")+1:]
		if len(after) <= 2 && isDigits(after) {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, " ", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
			clean = strings.ReplaceAll(clean, " ", "")
		}
	case hasComma:
		after := clean[strings.LastIndex(clean, ",")+1:]
		if len(after) == 3 && isDigits(after) {
			// 1,234
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	default:
		clean = strings.ReplaceAll(clean, " ", "")
	}
	if negative {
		clean = "-" + clean
	}

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ParseTimestamp tries the supported date layouts
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
