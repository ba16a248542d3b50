package core

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Term is an optional query term. A Term built from blank input is absent;
// a present Term always holds trimmed, lowercased text.
type Term struct {
	value string
	ok    bool
}

// NewTerm normalizes raw once. Blank input yields an absent Term.
func NewTerm(raw string) Term {
	v := Normalize(raw)
	if v == "" {
		return Term{}
	}
	return Term{value: v, ok: true}
}

// Value returns the normalized text and whether the term is present.
func (t Term) Value() (string, bool) {
	return t.value, t.ok
}

func (t Term) Present() bool {
	return t.ok
}

func (t Term) String() string {
	return t.value
}

// Normalize trims surrounding whitespace and lowercases s.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return lower(s)
}

// A Caser is stateful, so one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
