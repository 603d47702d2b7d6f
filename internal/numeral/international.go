package numeral

import "strings"

// digitZeros lists the code point of zero for each supported decimal digit
// block. Each block is ten contiguous code points.
var digitZeros = []rune{
	0x0660, // Arabic-Indic
	0x06F0, // Extended Arabic-Indic (Persian, Urdu)
	0x07C0, // NKo
	0x0966, // Devanagari
	0x09E6, // Bengali
	0x0A66, // Gurmukhi
	0x0AE6, // Gujarati
	0x0B66, // Oriya
	0x0BE6, // Tamil
	0x0C66, // Telugu
	0x0CE6, // Kannada
	0x0D66, // Malayalam
	0x0E50, // Thai
	0x0ED0, // Lao
	0x0F20, // Tibetan
	0x1040, // Myanmar
	0x17E0, // Khmer
	0x1810, // Mongolian
	0xFF10, // Fullwidth
}

var separators = map[rune]rune{
	0x066B: '.', // Arabic decimal separator
	0x066C: ',', // Arabic thousands separator
	0x060C: ',', // Arabic comma
	0x2212: '-', // minus sign
}

// ToASCIIDigits maps digits of the supported scripts to '0'..'9' and the
// script-specific separators to their ASCII equivalents.
func ToASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x0660 {
			return r
		}
		if sep, ok := separators[r]; ok {
			return sep
		}
		for _, zero := range digitZeros {
			if r >= zero && r <= zero+9 {
				return '0' + (r - zero)
			}
		}
		return r
	}, s)
}
