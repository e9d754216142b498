package ingest

import "strings"

// MultiTokenParser merges known multi-word names into single tokens.
type MultiTokenParser struct {
	phrases  map[string]DictEntry // space-joined words → entry
	merged   map[string]DictEntry // canonical form → entry
	maxWords int
}

// DictEntry is one multi-word name. Words is the tokenized form the parser
// looks for; Canonical replaces it in the output.
type DictEntry struct {
	Canonical string
	Category  string
	Words     []string
}

// NewMultiTokenParser indexes entries of two or more words. When two
// entries tokenize identically the first one wins.
func NewMultiTokenParser(entries []DictEntry) *MultiTokenParser {
	p := &MultiTokenParser{
		phrases:  make(map[string]DictEntry, len(entries)),
		merged:   make(map[string]DictEntry, len(entries)),
		maxWords: 1,
	}
	for _, e := range entries {
		if len(e.Words) < 2 {
			continue
		}
		key := strings.ToLower(strings.Join(e.Words, " "))
		if _, dup := p.phrases[key]; dup {
			continue
		}
		p.phrases[key] = e
		if _, dup := p.merged[e.Canonical]; !dup {
			p.merged[e.Canonical] = e
		}
		p.maxWords = max(p.maxWords, len(e.Words))
	}
	return p
}

// Parse replaces every known phrase with its canonical form, taking the
// longest phrase that starts at each position.
func (p *MultiTokenParser) Parse(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if e, n, ok := p.longestAt(tokens[i:]); ok {
			out = append(out, e.Canonical)
			i += n
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

func (p *MultiTokenParser) longestAt(tokens []string) (DictEntry, int, bool) {
	for n := min(p.maxWords, len(tokens)); n >= 2; n-- {
		if e, ok := p.phrases[strings.Join(tokens[:n], " ")]; ok {
			return e, n, true
		}
	}
	return DictEntry{}, 0, false
}

// Lookup returns the entry a merged token stands for.
func (p *MultiTokenParser) Lookup(canonical string) (DictEntry, bool) {
	e, ok := p.merged[canonical]
	return e, ok
}

// Len returns the number of distinct phrases.
func (p *MultiTokenParser) Len() int {
	return len(p.phrases)
}
