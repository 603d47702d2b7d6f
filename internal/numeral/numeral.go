// Package numeral turns locale-specific numeric text into float64 values.
//
// Every function is pure. Analyzers call Parse or ParseAll with the flags of
// their own resolved configuration; nothing here is process-global.
package numeral

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// ErrNotNumeric is wrapped by every parse failure.
var ErrNotNumeric = errors.New("not a numeric value")

// Options selects which numeral systems are recognized besides ASCII.
type Options struct {
	// Japanese enables full-width digits and kanji numerals (一万二千, 3千5百).
	Japanese bool
	// International enables the decimal digit blocks of other scripts
	// (Arabic-Indic, Devanagari, Thai, ...).
	International bool
}

// Parse converts one token to a finite float64.
func Parse(s string, opts Options) (float64, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return 0, fmt.Errorf("%w: empty token", ErrNotNumeric)
	}

	if opts.Japanese {
		// Fold narrows full-width Latin digits but keeps katakana wide.
		text = width.Fold.String(text)
		if hasKanjiNumeral(text) {
			v, err := parseKanji(text)
			if err != nil {
				return 0, fmt.Errorf("%w: %q: %v", ErrNotNumeric, s, err)
			}
			return v, nil
		}
		if rest, ok := trimAccountingMinus(text); ok {
			v, parsed := parseDecorated(rest)
			if !parsed {
				return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
			}
			return -v, nil
		}
	}
	if opts.International {
		text = ToASCIIDigits(text)
	}

	v, ok := parseDecorated(text)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, s)
	}
	return v, nil
}

// ParseAll converts every token, returning the parsed values in input order
// and the number of tokens that could not be parsed.
func ParseAll(tokens []string, opts Options) (values []float64, failed int) {
	values = make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := Parse(tok, opts)
		if err != nil {
			failed++
			continue
		}
		values = append(values, v)
	}
	return values, failed
}

// Normalize rewrites the digits of s into ASCII without parsing it, applying
// the same script handling as Parse. Kanji numerals are left untouched.
func Normalize(s string, opts Options) string {
	if opts.Japanese {
		s = width.Fold.String(s)
	}
	if opts.International {
		s = ToASCIIDigits(s)
	}
	return s
}

// parseDecorated handles ASCII numerals with the decorations found in
// exported spreadsheets: currency symbols, percent signs, parentheses for
// negatives and either US or European separators.
func parseDecorated(strVal string) (float64, bool) {
	cleanVal := strings.TrimSpace(strVal)
	if cleanVal == "" {
		return 0, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range currencySymbols {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.ReplaceAll(cleanVal, "%", "")
	cleanVal = strings.ReplaceAll(cleanVal, "_", "")
	cleanVal = strings.TrimSpace(cleanVal)

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// Whichever separator comes last is the decimal mark: 1.234,56 vs 1,234.56
		if strings.LastIndex(cleanVal, ",") > strings.LastIndex(cleanVal, ".") {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		if thousandsGrouped(cleanVal, ',') {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.Replace(cleanVal, ",", ".", 1)
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		if strings.HasPrefix(cleanVal, "-") {
			return 0, false
		}
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

var currencySymbols = []string{"USD", "EUR", "GBP", "JPY", "$", "€", "£", "¥", "円", "₹", "₩"}

// thousandsGrouped reports whether every group after the first separator has
// exactly three digits, e.g. 1,234,567.
func thousandsGrouped(s string, sep rune) bool {
	parts := strings.Split(strings.TrimLeft(s, "+-"), string(sep))
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
