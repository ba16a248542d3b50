// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses,
// so every handler sets status, headers and body the same way.

package http

import (
	"encoding/json"
	"net/http"

	applog "legisbase/internal/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

// ErrorPayload is the body of every API error response.
type ErrorPayload struct {
	Error string `json:"error"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
	err        error
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a response header.
func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// JSON encodes v as the body. An encoding failure turns the response into a
// 500 when Write runs.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.body = body
	return b
}

// RawJSON uses an already encoded body.
func (b *JSONResponseBuilder) RawJSON(body []byte) *JSONResponseBuilder {
	b.body = body
	return b
}

// Error sets an {"error": msg} body.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	return b.JSON(ErrorPayload{Error: msg})
}

// Write sends the response. r supplies the request-scoped logger.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	if b.err != nil {
		ctx := r.Context()
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to encode JSON response",
			applog.NewFields().WithError(b.err).ToSlice()...)
		b.statusCode = http.StatusInternalServerError
		b.body = []byte(`{"error":"Internal server error"}`)
	}

	for key, value := range b.headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// writeError is shorthand for an error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	NewJSONResponse().Status(status).Error(msg).Write(w, r)
}
