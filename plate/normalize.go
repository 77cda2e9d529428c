package plate

import (
	"regexp"
	"strings"
)

var (
	linebreaks  = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	whitespace  = regexp.MustCompile(`\s+`)
	splitDigits = regexp.MustCompile(`(\d) +(\d)`)
)

// confusables corrects character substitutions OCR engines commonly make on
// plate glyphs. Only ASCII characters are rewritten, so CJK runs (place
// names) pass through untouched.
var confusables = map[rune]rune{
	'|': '1', 'l': '1', 'I': '1',
	'O': '0', 'o': '0',
	'S': '5', 's': '5',
	'Z': '2', 'z': '2',
	'B': '8',
	'G': '6',
}

// Normalize cleans raw recognized text into the form the parser expects.
// The steps are order-sensitive: linebreak collapsing, whitespace
// collapsing, alphabet stripping, full-width folding, confusable
// correction, and joining of digit runs that OCR split with spurious
// spaces. Normalize is pure and idempotent.
func Normalize(raw string) string {
	s := linebreaks.Replace(raw)
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		r = foldWidth(r)
		if !allowedRune(r) {
			continue
		}
		if fixed, ok := confusables[r]; ok {
			r = fixed
		}
		b.WriteRune(r)
	}
	// Stripping a rune between two spaces leaves a doubled space, so
	// collapse again after the loop.
	s = strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " "))

	// OCR frequently inserts spaces inside multi-digit numbers; join
	// adjacent digit runs until stable.
	for {
		joined := splitDigits.ReplaceAllString(s, "${1}${2}")
		if joined == s {
			break
		}
		s = joined
	}
	return s
}

// foldWidth maps full-width digits and Latin letters to their ASCII
// counterparts and hyphen lookalikes to an ASCII hyphen.
func foldWidth(r rune) rune {
	switch {
	case r >= '０' && r <= '９':
		return r - '０' + '0'
	case r >= 'Ａ' && r <= 'Ｚ':
		return r - 'Ａ' + 'A'
	case r >= 'ａ' && r <= 'ｚ':
		return r - 'ａ' + 'a'
	case r == '‐' || r == '−' || r == '－':
		return '-'
	}
	return r
}

// allowedRune reports membership in the plate alphabet: hiragana, katakana,
// CJK ideographs, ASCII word characters, hyphens, digits and spaces.
func allowedRune(r rune) bool {
	switch {
	case r == ' ' || r == '-':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r == '_':
		return true
	case r >= 'ぁ' && r <= 'ゖ': // hiragana
		return true
	case r >= 'ァ' && r <= 'ー': // katakana incl. prolonged sound mark
		return true
	case r >= '一' && r <= '鿿': // CJK ideographs
		return true
	}
	return false
}
