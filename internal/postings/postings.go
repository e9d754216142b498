// Package postings reads job postings from JSON exports.
//
// Three layouts are accepted: a JSONL file with one posting per line, a
// JSON file holding one posting or an array of postings, and a directory
// of such JSON files.
package postings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
)

// ErrNoPostings is returned when an input holds neither a posting nor a
// malformed record.
var ErrNoPostings = errors.New("no postings found")

// InputError records a posting that could not be decoded. Source names the
// file and, for JSONL and arrays, the line or index.
type InputError struct {
	Source string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Batch is the decoded content of one input. Malformed records are
// collected in Errors instead of failing the whole input.
type Batch struct {
	Documents []ingest.Document
	Errors    []*InputError
}

func (b *Batch) merge(o Batch) {
	b.Documents = append(b.Documents, o.Documents...)
	b.Errors = append(b.Errors, o.Errors...)
}

// Load picks the reader from the path: directories are scanned for *.json
// files, *.jsonl is read line by line, anything else is read as JSON.
func Load(path string) (Batch, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Batch{}, fmt.Errorf("stat %s: %w", path, err)
	}

	var b Batch
	switch {
	case info.IsDir():
		b, err = LoadDir(path)
	case strings.EqualFold(filepath.Ext(path), ".jsonl"):
		b, err = LoadJSONL(path)
	default:
		b, err = LoadJSON(path)
	}
	if err != nil {
		return b, err
	}
	if len(b.Documents) == 0 && len(b.Errors) == 0 {
		return b, fmt.Errorf("%s: %w", path, ErrNoPostings)
	}
	return b, nil
}

// LoadJSONL reads one posting per line. Blank lines are skipped; a posting
// without an id gets its line number.
func LoadJSONL(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read file %s: %w", path, err)
	}

	var b Batch
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		source := path + ":" + strconv.Itoa(i+1)
		var doc ingest.Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			b.Errors = append(b.Errors, &InputError{Source: source, Err: err})
			continue
		}
		if doc.ID == "" {
			doc.ID = strconv.Itoa(i + 1)
		}
		b.Documents = append(b.Documents, doc)
	}

	return b, nil
}

// LoadJSON reads a file holding either one posting or an array of them. A
// single posting without an id is named after the file; array elements
// after the file and their index.
func LoadJSON(path string) (Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Batch{}, fmt.Errorf("read file %s: %w", path, err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	trimmed := bytes.TrimSpace(data)

	var b Batch
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			b.Errors = append(b.Errors, &InputError{Source: path, Err: err})
			return b, nil
		}
		for i, msg := range raw {
			var doc ingest.Document
			if err := json.Unmarshal(msg, &doc); err != nil {
				source := fmt.Sprintf("%s[%d]", path, i)
				b.Errors = append(b.Errors, &InputError{Source: source, Err: err})
				continue
			}
			if doc.ID == "" {
				doc.ID = fmt.Sprintf("%s-%d", base, i)
			}
			b.Documents = append(b.Documents, doc)
		}
		return b, nil
	}

	var doc ingest.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		b.Errors = append(b.Errors, &InputError{Source: path, Err: err})
		return b, nil
	}
	if doc.ID == "" {
		doc.ID = base
	}
	b.Documents = append(b.Documents, doc)
	return b, nil
}

// LoadDir reads every *.json file in dir, in name order. Subdirectories
// are not descended into.
func LoadDir(dir string) (Batch, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return Batch{}, fmt.Errorf("glob %s: %w", dir, err)
	}
	sort.Strings(paths)

	var b Batch
	for _, p := range paths {
		fb, err := LoadJSON(p)
		if err != nil {
			b.Errors = append(b.Errors, &InputError{Source: p, Err: err})
			continue
		}
		b.merge(fb)
	}
	return b, nil
}
