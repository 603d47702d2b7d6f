package numeral

import (
	"fmt"
	"strconv"
	"strings"
)

var kanjiDigits = map[rune]float64{
	'〇': 0, '零': 0,
	'一': 1, '壱': 1,
	'二': 2, '弐': 2,
	'三': 3, '参': 3,
	'四': 4,
	'五': 5,
	'六': 6,
	'七': 7,
	'八': 8,
	'九': 9,
}

var smallUnits = map[rune]float64{
	'十': 10, '拾': 10,
	'百': 100,
	'千': 1000, '阡': 1000,
}

var largeUnits = map[rune]float64{
	'万': 1e4, '萬': 1e4,
	'億': 1e8,
	'兆': 1e12,
	'京': 1e16,
}

func hasKanjiNumeral(s string) bool {
	for _, r := range s {
		if _, ok := kanjiDigits[r]; ok {
			return true
		}
		if _, ok := smallUnits[r]; ok {
			return true
		}
		if _, ok := largeUnits[r]; ok {
			return true
		}
	}
	return false
}

// trimAccountingMinus strips the negative markers used in Japanese ledgers.
func trimAccountingMinus(s string) (string, bool) {
	for _, prefix := range []string{"マイナス", "△", "▲"} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimPrefix(s, prefix), true
		}
	}
	return s, false
}

// parseKanji evaluates kanji numerals, including the mixed forms common in
// Japanese documents ("1万2千", "3.5億", "二〇二四"). Input must already be
// width-folded.
func parseKanji(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s, negative := trimAccountingMinus(s)
	if !negative && strings.HasPrefix(s, "-") {
		s, negative = strings.TrimPrefix(s, "-"), true
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "円")
	s = strings.ReplaceAll(s, ",", "")

	var (
		total   float64 // sum of completed large-unit groups
		section float64 // value below the next large unit
		current float64 // digits not yet bound to a unit
		pending strings.Builder
		seen    bool
	)

	flush := func() error {
		if pending.Len() == 0 {
			return nil
		}
		v, err := strconv.ParseFloat(pending.String(), 64)
		if err != nil {
			return fmt.Errorf("bad arabic digits %q", pending.String())
		}
		current = v
		pending.Reset()
		return nil
	}

	for _, r := range s {
		switch {
		case (r >= '0' && r <= '9') || r == '.':
			pending.WriteRune(r)
			seen = true
		default:
			if err := flush(); err != nil {
				return 0, err
			}
			if d, ok := kanjiDigits[r]; ok {
				current = current*10 + d
				seen = true
			} else if u, ok := smallUnits[r]; ok {
				if current == 0 {
					current = 1
				}
				section += current * u
				current = 0
				seen = true
			} else if u, ok := largeUnits[r]; ok {
				section += current
				if section == 0 {
					section = 1
				}
				total += section * u
				section, current = 0, 0
				seen = true
			} else {
				return 0, fmt.Errorf("unexpected character %q", r)
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}
	if !seen {
		return 0, fmt.Errorf("no numeral found")
	}

	v := total + section + current
	if negative {
		v = -v
	}
	return v, nil
}
