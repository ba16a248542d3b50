package core

import (
	"errors"
	"net/url"
	"strings"
)

type (
	// Bill is a legislative record with fixed descriptive fields and a tag set.
	Bill struct {
		ID               int      `json:"id" yaml:"id"`
		Title            string   `json:"title" yaml:"title"`
		BillNumber       string   `json:"billNumber" yaml:"billNumber"`
		Status           string   `json:"status" yaml:"status"`
		Summary          string   `json:"summary" yaml:"summary"`
		AIInterpretation string   `json:"aiInterpretation" yaml:"aiInterpretation"`
		Tags             []string `json:"tags" yaml:"tags"`
		DateIntroduced   string   `json:"dateIntroduced" yaml:"dateIntroduced"`
		Sponsor          string   `json:"sponsor" yaml:"sponsor"`
	}

	// BillFilter narrows a bill listing. Zero value matches everything.
	BillFilter struct {
		Search Term
		Tag    Term
	}
)

var (
	ErrNotFound    = errors.New("bill not found")
	ErrInvalidID   = errors.New("invalid bill id")
	ErrDuplicateID = errors.New("duplicate bill id")
	ErrEmptyTitle  = errors.New("empty bill title")
)

func (b Bill) Validate() error {
	if b.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Clone returns a copy of b that shares no memory with it. An empty tag
// set stays empty rather than nil so it encodes as [].
func (b Bill) Clone() Bill {
	if b.Tags != nil {
		b.Tags = append(make([]string, 0, len(b.Tags)), b.Tags...)
	}
	return b
}

// HasTag reports whether tag is one of b's tags. The comparison is exact;
// callers pass an already-normalized tag.
func (b Bill) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NewBillFilter builds a filter from raw, possibly empty, query values.
func NewBillFilter(search, tag string) BillFilter {
	return BillFilter{Search: NewTerm(search), Tag: NewTerm(tag)}
}

// IsZero reports whether the filter has no active term.
func (f BillFilter) IsZero() bool {
	return !f.Search.Present() && !f.Tag.Present()
}

// Key is a stable representation of the filter, usable as a cache key.
// Both terms are query-escaped so no pair of filters shares a key.
func (f BillFilter) Key() string {
	return url.Values{
		"search": {f.Search.String()},
		"tag":    {f.Tag.String()},
	}.Encode()
}
