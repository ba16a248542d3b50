package http

import (
	"net/http"
	"strings"
)

const allowedReadMethods = "GET, HEAD"

// allowRead rejects anything but GET and HEAD with 405 and an Allow header.
func allowRead(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			NewJSONResponse().
				Status(http.StatusMethodNotAllowed).
				Header("Allow", allowedReadMethods).
				Error("Method not allowed").
				Write(w, r)
			return
		}
		next(w, r)
	}
}

// stripControl removes control characters other than tab and newlines.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded")
}
