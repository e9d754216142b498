package ingest

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

var (
	boldRe      = regexp.MustCompile(`\*\*`)
	headingRe   = regexp.MustCompile(`(?m)^[ \t]*(?:#{1,6}|[*+])[ \t]+`)
	imageRe     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkRe      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	priceDashRe = regexp.MustCompile(`(\d)[,.]-+`)
	isoRe       = regexp.MustCompile(`(?i)\biso(?:\s*/\s*iec)?[\s-]*(\d{4,5})(?::\d{4})?\b`)
	letterRunRe = regexp.MustCompile(`\p{L}+`)
	separatorRe = regexp.MustCompile(`[-_/–]+`)
	spacesRe    = regexp.MustCompile(`[ \t]+`)
)

// contractions are split off the end of a word, longest first.
var contractions = []string{"n't", "'re", "'ve", "'ll", "'s", "'d", "'m"}

// Tokenizer handles text cleanup, tokenization and per-token normalization.
type Tokenizer struct {
	stopwords map[string]struct{}
	rules     *rules.Set
}

// NewTokenizer creates a new tokenizer with the given rules and stopword list
func NewTokenizer(rs *rules.Set, stopwords []string) *Tokenizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Tokenizer{
		stopwords: stops,
		rules:     rs,
	}
}

// Prepare applies the text-level rewrites that run before tokenization:
// markdown cleanup, phrase expansions, currency spacing, the ISO/IEC
// canonical form and separator splitting.
func (t *Tokenizer) Prepare(text string) string {
	text = stripMarkdown(text)
	text = t.expand(text)
	text = t.spaceCurrency(text)
	// Canonicalize before the separator split so every spelling of an
	// ISO/IEC standard yields the same word sequence.
	text = isoRe.ReplaceAllString(text, "ISO/IEC $1")
	text = separatorRe.ReplaceAllString(text, " ")
	return spacesRe.ReplaceAllString(text, " ")
}

func stripMarkdown(text string) string {
	text = boldRe.ReplaceAllString(text, " ")
	text = headingRe.ReplaceAllString(text, "")
	text = imageRe.ReplaceAllString(text, " ")
	text = linkRe.ReplaceAllString(text, "$1")
	return priceDashRe.ReplaceAllString(text, "$1 ")
}

func (t *Tokenizer) expand(text string) string {
	for _, e := range t.rules.Expansions {
		text = e.Pattern.ReplaceAllString(text, e.Replace)
	}
	return text
}

func (t *Tokenizer) spaceCurrency(text string) string {
	for _, sym := range t.rules.CurrencySymbols {
		text = strings.ReplaceAll(text, sym, " "+sym+" ")
	}
	return letterRunRe.ReplaceAllStringFunc(text, func(run string) string {
		if _, ok := t.rules.CurrencyCodes[strings.ToLower(run)]; ok {
			return " " + run + " "
		}
		return run
	})
}

// Tokenize lowercases the prepared text with German casing rules and splits
// it into raw word tokens. Leading and trailing punctuation becomes separate
// tokens, internal punctuation (as in "1.234,56") is kept, and contraction
// suffixes are split off.
func (t *Tokenizer) Tokenize(text string) []string {
	text = lower(t.Prepare(text))

	var tokens []string
	for _, field := range strings.Fields(text) {
		tokens = append(tokens, splitField(field)...)
	}
	return tokens
}

func splitField(field string) []string {
	runes := []rune(field)
	start, end := 0, len(runes)
	for start < end && isPunct(runes[start]) {
		start++
	}
	for end > start && isPunct(runes[end-1]) {
		end--
	}

	out := make([]string, 0, 3)
	for _, r := range runes[:start] {
		out = append(out, string(r))
	}
	if start < end {
		core := strings.ReplaceAll(string(runes[start:end]), "’", "'")
		out = append(out, splitContraction(core)...)
	}
	for _, r := range runes[end:] {
		out = append(out, string(r))
	}
	return out
}

func splitContraction(word string) []string {
	for _, suffix := range contractions {
		if len(word) > len(suffix) && strings.HasSuffix(word, suffix) {
			return []string{word[:len(word)-len(suffix)], suffix}
		}
	}
	return []string{word}
}

// PhraseEntries builds multi-word dictionary entries from reference names,
// tokenizing each name exactly like running text so that both sides agree.
func (t *Tokenizer) PhraseEntries(names []refdata.Name) []DictEntry {
	entries := make([]DictEntry, 0, len(names))
	for _, n := range names {
		words := t.Tokenize(n.Text)
		if len(words) < 2 {
			continue
		}
		entries = append(entries, DictEntry{
			Canonical: lower(n.Text),
			Category:  string(n.Kind),
			Words:     words,
		})
	}
	return entries
}

// lower applies NFC and German lowercasing. A Caser keeps state between
// calls, so each call gets its own.
func lower(s string) string {
	return cases.Lower(language.German).String(norm.NFC.String(s))
}

// IsStopword reports whether a lowercased word is filtered out.
func (t *Tokenizer) IsStopword(word string) bool {
	_, ok := t.stopwords[word]
	return ok
}

// isPunct reports whether r belongs to the punctuation set that is peeled
// off words and dropped as a standalone token.
func isPunct(r rune) bool {
	return unicode.IsPunct(r) || strings.ContainsRune(extraPunct, r)
}

const extraPunct = "„“”‚‘’«»‹›–—…·•|+=<>~^`"
