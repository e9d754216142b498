package ingest

import (
	"reflect"
	"testing"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/refdata"
	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

func newTestTokenizer(stopwords ...string) *Tokenizer {
	return NewTokenizer(rules.MustDefault(), stopwords)
}

func TestTokenizerBasic(t *testing.T) {
	tok := newTestTokenizer()

	got := tok.Tokenize("Hello, World!")
	expected := []string{"hello", ",", "world", "!"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestTokenizerGermanLowercase(t *testing.T) {
	tok := newTestTokenizer()

	got := tok.Tokenize("ÖSTERREICH Größe")
	expected := []string{"österreich", "größe"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestTokenizerKeepsInternalPunctuation(t *testing.T) {
	tok := newTestTokenizer()

	got := tok.Tokenize("(1.234,56)")
	expected := []string{"(", "1.234,56", ")"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestTokenizerQuotes(t *testing.T) {
	tok := newTestTokenizer()

	got := tok.Tokenize("„Sicherheit“")
	expected := []string{"„", "sicherheit", "“"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestTokenizerContractions(t *testing.T) {
	tok := newTestTokenizer()

	tests := []struct {
		in   string
		want []string
	}{
		{"don't", []string{"do", "n't"}},
		{"we're", []string{"we", "'re"}},
		{"company’s", []string{"company", "'s"}},
		{"it'll", []string{"it", "'ll"}},
		{"'s", []string{"'", "s"}},
	}
	for _, tt := range tests {
		if got := tok.Tokenize(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrepare(t *testing.T) {
	tok := newTestTokenizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"markdown link", "[Bewerbung](https://example.at/job) jetzt", "Bewerbung jetzt"},
		{"markdown image", "![logo](logo.png) Graz", " Graz"},
		{"bold and heading", "## **Aufgaben**", "Aufgaben "},
		{"price dash", "3.500,- brutto", "3.500 brutto"},
		{"sankt abbreviation", "St. Pölten", "Sankt Pölten"},
		{"state expansion", "Lower Austria", "Niederösterreich"},
		{"currency symbol", "€3.500", " € 3.500"},
		{"currency code", "EUR3500", " EUR 3500"},
		{"currency code inside word", "Europa", "Europa"},
		{"iso short", "ISO 27001", "ISO IEC 27001"},
		{"iso dashed", "iso-27001", "ISO IEC 27001"},
		{"iso with year", "ISO/IEC 27001:2022", "ISO IEC 27001"},
		{"separators", "Full-Time/Teilzeit", "Full Time Teilzeit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tok.Prepare(tt.in); got != tt.want {
				t.Errorf("Prepare(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPhraseEntries(t *testing.T) {
	tok := newTestTokenizer()

	names := []refdata.Name{
		{Text: "Wien", Kind: refdata.KindCity},
		{Text: "Sankt Pölten", Kind: refdata.KindCity},
		{Text: "ISO/IEC 27001", Kind: refdata.KindCertification},
	}
	got := tok.PhraseEntries(names)
	expected := []DictEntry{
		{Canonical: "sankt pölten", Category: string(refdata.KindCity), Words: []string{"sankt", "pölten"}},
		{Canonical: "iso/iec 27001", Category: string(refdata.KindCertification), Words: []string{"iso", "iec", "27001"}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestIsStopword(t *testing.T) {
	tok := newTestTokenizer("Und", "the")

	if !tok.IsStopword("und") || !tok.IsStopword("the") {
		t.Error("Stopwords should match lowercased")
	}
	if tok.IsStopword("wien") {
		t.Error("wien is not a stopword")
	}
}
