package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"legisbase/internal/core"
	applog "legisbase/internal/log"
)

const msgBillNotFound = "Bill not found"

// handleListBills serves GET /api/bills?search=&tag=.
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f := ParseBillFilter(r)
	key := f.Key()

	if entry, ok := s.listCache.Get(key); ok {
		s.catalog.RecordList(ctx, f, entry.ids)
		NewJSONResponse().Header("X-Cache", "HIT").RawJSON(entry.body).Write(w, r)
		return
	}

	bills, err := s.catalog.ListBills(ctx, f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	body, err := json.Marshal(bills)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	ids := make([]int, len(bills))
	for i, b := range bills {
		ids[i] = b.ID
	}
	s.listCache.Set(key, cachedList{body: body, ids: ids})

	applog.FromContext(ctx).DebugContext(ctx, "Listed bills",
		applog.NewFields().
			WithOperation(applog.OpList).
			WithQuery(f.Search.String(), f.Tag.String()).
			WithResultCount(len(bills)).
			ToSlice()...)

	NewJSONResponse().Header("X-Cache", "MISS").RawJSON(body).Write(w, r)
}

// handleGetBill serves GET /api/bills/{id}.
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := ParseBillID(r.PathValue("id"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, msgBillNotFound)
		return
	}

	bill, err := s.catalog.GetBill(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, msgBillNotFound)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().JSON(bill).Write(w, r)
}

// handleTags serves GET /api/tags.
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.catalog.Tags(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	NewJSONResponse().JSON(tags).Write(w, r)
}

type previewData struct {
	Bills  []core.Bill
	Count  int
	Source string
}

// handlePreview renders every bill as a server-side HTML page.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.templates == nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	bills := s.catalog.Store().All()
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, "preview.html", previewData{
		Bills:  bills,
		Count:  len(bills),
		Source: s.source,
	})
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to render preview",
			applog.NewFields().WithOperation(applog.OpRender).WithError(err).ToSlice()...)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "Not found")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.static == nil {
		http.Error(w, "static assets not loaded", http.StatusInternalServerError)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", allowedReadMethods)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, s.static, "index.html")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]string{"status": "ok"}).Write(w, r)
}

type readyPayload struct {
	Status string     `json:"status"`
	Source string     `json:"source,omitempty"`
	Bills  int        `json:"bills"`
	Cache  cacheStats `json:"cache"`
}

type cacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// handleReady reports the loaded store. The store is built before the
// server starts, so a running server is always ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	st := s.listCache.Stats()
	NewJSONResponse().JSON(readyPayload{
		Status: "ready",
		Source: s.source,
		Bills:  s.catalog.Store().Len(),
		Cache:  cacheStats{Entries: st.Size, Hits: st.Hits, Misses: st.Misses},
	}).Write(w, r)
}

// handleMetrics writes plain-text counters, one "name value" pair per line.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	tm := s.tracer.GetMetrics()
	dm := s.detector.GetMetrics()
	rm := s.limiter.GetMetrics()
	cs := s.listCache.Stats()

	var buf bytes.Buffer
	line := func(name string, v any) {
		fmt.Fprintf(&buf, "legisbase_%s %v\n", name, v)
	}
	line("http_requests_total", tm.TotalRequests)
	line("http_requests_failed_total", tm.FailedRequests)
	line("http_response_time_avg_microseconds", tm.AverageResponseTime)
	line("security_suspicious_requests_total", dm.SuspiciousRequests)
	line("security_invalid_ip_total", dm.InvalidIPAttempts)
	line("rate_limit_rejected_total", rm.Rejected)
	line("rate_limit_clients", rm.ClientCount)
	line("list_cache_entries", cs.Size)
	line("list_cache_hits_total", cs.Hits)
	line("list_cache_misses_total", cs.Misses)
	line("bills", s.catalog.Store().Len())

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		applog.FromContext(ctx).WarnContext(ctx, "Request abandoned", "error", err)
		writeError(w, r, http.StatusServiceUnavailable, "Request cancelled")
		return
	}
	applog.FromContext(ctx).ErrorContext(ctx, "Bill query failed",
		applog.NewFields().WithError(err).ToSlice()...)
	writeError(w, r, http.StatusInternalServerError, "Internal server error")
}
