// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing bill queries out of requests.

package http

import (
	"net/http"
	"strconv"
	"strings"

	"legisbase/internal/core"
)

// ParseBillFilter reads the optional search and tag query parameters. Blank
// or missing values leave the matching filter term absent.
func ParseBillFilter(r *http.Request) core.BillFilter {
	q := r.URL.Query()
	return core.NewBillFilter(stripControl(q.Get("search")), stripControl(q.Get("tag")))
}

// ParseBillID parses the {id} path segment. Leading whitespace is skipped
// and the longest base-10 integer prefix is used, so "2abc" and "2.5" both
// read as 2. A segment without leading digits yields core.ErrInvalidID.
func ParseBillID(raw string) (int, error) {
	s := strings.TrimLeft(raw, " \t\n\r\f\v")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, core.ErrInvalidID
	}
	id, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, core.ErrInvalidID
	}
	return id, nil
}
