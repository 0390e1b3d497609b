// Package similarity provides the text scorers used to match semantic blocks
// against page-tagged paragraphs.
//
// Both scorers compare NFC-normalized text, so two strings that differ only
// in Unicode composition still score 1.0.
package similarity

import (
	"fmt"

	"github.com/agext/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"

	"github.com/gaurav-prasanna/pagemerge/core"
)

// Scorer names accepted by New.
const (
	NameSequence    = "sequence"
	NameLevenshtein = "levenshtein"
)

// New returns the scorer registered under name.
func New(name string) (core.Scorer, error) {
	switch name {
	case "", NameSequence:
		return Sequence{}, nil
	case NameLevenshtein:
		return Levenshtein{}, nil
	default:
		return nil, fmt.Errorf("unknown scorer %q (want %q or %q)", name, NameSequence, NameLevenshtein)
	}
}

// Sequence scores with the SequenceMatcher ratio 2*M/T, where M is the
// number of matched code points and T the combined length.
type Sequence struct{}

// Ratio implements core.Scorer.
func (Sequence) Ratio(a, b string) float64 {
	m := difflib.NewMatcher(codePoints(a), codePoints(b))
	return m.Ratio()
}

// Levenshtein scores with normalized edit distance.
type Levenshtein struct{}

// Ratio implements core.Scorer.
func (Levenshtein) Ratio(a, b string) float64 {
	a, b = norm.NFC.String(a), norm.NFC.String(b)
	if a == b {
		return 1
	}
	return levenshtein.Similarity(a, b, nil)
}

// codePoints splits s into one element per rune so the matcher works on
// characters rather than lines.
func codePoints(s string) []string {
	s = norm.NFC.String(s)
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
