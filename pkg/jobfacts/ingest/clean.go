package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	thousandsSuffixRe = regexp.MustCompile(`^(\d+)k$`)
	halfSuffixRe      = regexp.MustCompile(`^(\d+)½$`)

	// Period or apostrophe as thousands separator, comma as decimal mark.
	europeanRe = regexp.MustCompile(`^\d{1,3}(?:[.']\d{3})+(?:,\d+)?$`)
	// Comma as thousands separator, period as decimal mark.
	englishRe = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	// No grouping; either mark may be the decimal separator.
	plainRe = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
)

// CleanWord normalizes one raw token. It returns false when the token is
// dropped (pure punctuation or nothing left after cleanup).
func (t *Tokenizer) CleanWord(word string) (Token, bool) {
	if isPunctuation(word) {
		return Token{}, false
	}

	word = strings.TrimSuffix(word, ".")
	if word == "" {
		return Token{}, false
	}

	if t.rules.IsCurrency(word) {
		return Word(CurrencySentinel), true
	}

	if m := thousandsSuffixRe.FindStringSubmatch(word); m != nil {
		word = m[1] + "000"
	} else if m := halfSuffixRe.FindStringSubmatch(word); m != nil {
		word = m[1] + ".5"
	}

	if v, ok := ParseNumber(word); ok {
		return Number(v), true
	}
	return Word(word), true
}

// ParseNumber parses a number written with either thousands-separator
// convention. A single separator followed by exactly three digits is read
// as a thousands separator, so "3.500" is 3500 and "3,5" is 3.5.
func ParseNumber(s string) (float64, bool) {
	var canonical string
	switch {
	case europeanRe.MatchString(s):
		canonical = strings.NewReplacer(".", "", "'", "", ",", ".").Replace(s)
	case englishRe.MatchString(s):
		canonical = strings.ReplaceAll(s, ",", "")
	case plainRe.MatchString(s):
		canonical = strings.ReplaceAll(s, ",", ".")
	default:
		return 0, false
	}

	v, err := strconv.ParseFloat(canonical, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isPunctuation(word string) bool {
	if word == "" {
		return true
	}
	for _, r := range word {
		if !isPunct(r) {
			return false
		}
	}
	return true
}
