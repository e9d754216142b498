package ingest

import "strconv"

// CurrencySentinel is the single token every currency symbol or code is
// canonicalized to.
const CurrencySentinel = "€"

// Kind distinguishes word tokens from number tokens.
type Kind uint8

const (
	KindWord Kind = iota
	KindNumber
)

// Token is one normalized unit of text: a lowercased word or a parsed number.
type Token struct {
	Kind  Kind
	Text  string  // word text, or the canonical decimal rendering of a number
	Value float64 // set for numbers only
}

// Word creates a word token.
func Word(s string) Token {
	return Token{Kind: KindWord, Text: s}
}

// Number creates a number token.
func Number(v float64) Token {
	return Token{Kind: KindNumber, Text: FormatNumber(v), Value: v}
}

// FormatNumber renders a number in its shortest canonical decimal form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (t Token) IsWord() bool   { return t.Kind == KindWord }
func (t Token) IsNumber() bool { return t.Kind == KindNumber }

// IsCurrency reports whether the token is the currency sentinel.
func (t Token) IsCurrency() bool {
	return t.Kind == KindWord && t.Text == CurrencySentinel
}

func (t Token) String() string { return t.Text }

// Texts returns the text of every token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}
