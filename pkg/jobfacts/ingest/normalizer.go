package ingest

import (
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/stoplist"
)

// Normalizer turns raw plain text into an ordered token sequence:
// text cleanup → tokenization → multi-word merge → per-token cleanup →
// stopword removal.
//
// A Normalizer is immutable once built and safe for concurrent use.
type Normalizer struct {
	tokenizer *Tokenizer
	parser    *MultiTokenParser
}

// NewNormalizer creates a normalizer from its components
func NewNormalizer(tokenizer *Tokenizer, parser *MultiTokenParser) *Normalizer {
	return &Normalizer{
		tokenizer: tokenizer,
		parser:    parser,
	}
}

// New builds a normalizer whose multi-word dictionary covers every
// multi-word city, state and certification name in ref.
func New(rs *rules.Set, stops *stoplist.Manager, ref *refdata.Reference) *Normalizer {
	tokenizer := NewTokenizer(rs, stops.All())
	parser := NewMultiTokenParser(tokenizer.PhraseEntries(ref.Names()))
	return NewNormalizer(tokenizer, parser)
}

// Normalize runs text through the full normalization pipeline. It is pure:
// the same input always yields the same sequence, and no token is empty.
func (n *Normalizer) Normalize(text string) []Token {
	// 1. Cleanup and tokenization
	words := n.tokenizer.Tokenize(text)

	// 2. Multi-word merge (before stopwords, merged phrases may contain them)
	words = n.parser.Parse(words)

	// 3. Per-token cleanup and stopword removal
	tokens := make([]Token, 0, len(words))
	for _, w := range words {
		tok, ok := n.tokenizer.CleanWord(w)
		if !ok {
			continue
		}
		if tok.IsWord() && n.tokenizer.IsStopword(tok.Text) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Phrase reports which multi-word name a merged token stands for.
func (n *Normalizer) Phrase(token string) (DictEntry, bool) {
	return n.parser.Lookup(token)
}

// Tokenizer exposes the underlying tokenizer.
func (n *Normalizer) Tokenizer() *Tokenizer {
	return n.tokenizer
}
