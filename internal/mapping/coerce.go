package mapping

// coerce.go converts raw external cell values into canonical field types.
// External files are messy: currency symbols and grouping separators in
// numbers, half a dozen date layouts, Excel formula prefixes. An unparsable
// value becomes nil and is judged later by validation, so mapping itself
// never fails on a bad cell.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MaxTextLength bounds free-text fields after sanitization.
const MaxTextLength = 500

// numericPattern validates a numeric string after cleanup: integers,
// decimals and scientific notation.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// dateLayouts are tried in order. Unambiguous four-digit-year layouts only;
// two-digit years are not accepted from accounting exports.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2.1.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"20060102",
}

// CleanCell strips common file artifacts from a raw cell value: surrounding
// whitespace, Excel formula prefixes (="value") and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseNumber converts a raw cell to a float, handling currency symbols,
// grouping separators and accounting-style negatives "(123.45)". Returns nil
// for empty or unparsable input.
func ParseNumber(s string) *float64 {
	s = CleanCell(s)
	if s == "" {
		return nil
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	for _, sym := range []string{"$", "€", "£", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)
	if negative {
		s = "-" + s
	}

	if !numericPattern.MatchString(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseDate converts a raw cell to a timestamp by trying each supported
// layout. Returns nil for empty or unparsable input.
func ParseDate(s string) *time.Time {
	s = CleanCell(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// SanitizeText removes characters used for injection in downstream consumers
// (angle brackets, statement separators, comment markers) and truncates to
// MaxTextLength. Truncation respects rune boundaries.
func SanitizeText(s string) string {
	s = CleanCell(s)
	s = strings.NewReplacer("<", "", ">", "", ";", "", "--", "").Replace(s)
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > MaxTextLength {
		s = string(runes[:MaxTextLength])
	}
	return s
}
