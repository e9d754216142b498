// Package langdetect guesses the language of a posting body.
package langdetect

import (
	"github.com/abadojack/whatlanggo"
)

// Detector wraps whatlanggo. Detection is best effort: an unknown script,
// an empty text or a guess below MinConfidence yields no language.
type Detector struct {
	options       whatlanggo.Options
	MinConfidence float64
}

// New creates a detector restricted to the given ISO 639-1 codes. With no
// codes every language whatlanggo knows is allowed.
func New(codes ...string) *Detector {
	d := &Detector{}
	if len(codes) == 0 {
		return d
	}
	allowed := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		allowed[c] = struct{}{}
	}
	d.options.Whitelist = make(map[whatlanggo.Lang]bool)
	for lang := range whatlanggo.Langs {
		if _, ok := allowed[lang.Iso6391()]; ok {
			d.options.Whitelist[lang] = true
		}
	}
	return d
}

// Detect returns the ISO 639-1 code of the most likely language.
func (d *Detector) Detect(text string) (string, bool) {
	info := whatlanggo.DetectWithOptions(text, d.options)
	if info.Lang < 0 || info.Confidence < d.MinConfidence {
		return "", false
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", false
	}
	return code, true
}
