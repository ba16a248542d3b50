package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"legisbase/internal/cache"
	"legisbase/internal/catalog"
	applog "legisbase/internal/log"
	"legisbase/internal/middleware/ratelimit"
	"legisbase/internal/middleware/security"
	"legisbase/internal/middleware/trace"
	appweb "legisbase/web"
)

// Config tunes the server. Zero values fall back to the defaults below.
type Config struct {
	Addr string
	// Source names where the bills came from; shown on /readyz and the preview.
	Source             string
	RateLimitPerMinute int
	CacheSize          int
	CacheTTL           time.Duration
	Logger             *applog.Logger
}

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 10 * time.Minute
	staticMaxAge     = 3600
)

type Server struct {
	http.Server
	catalog   *catalog.Service
	source    string
	templates *template.Template
	static    fs.FS

	tracer   *trace.Middleware
	detector *security.Detector
	limiter  *ratelimit.Limiter

	// Encoded list responses keyed by normalized filter. The store never
	// changes while the server runs, so entries only leave by size or TTL.
	listCache *cache.LRUCache[cachedList]
	caches    *cache.Manager

	shutdownOnce sync.Once
}

type cachedList struct {
	body []byte
	ids  []int
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server. The caller owns the returned server and must
// call Shutdown to release its background goroutines.
func NewServer(cfg Config, svc *catalog.Service) *Server {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentHTTP})
	}

	detector := security.NewDetector()
	s := &Server{
		catalog:   svc,
		source:    cfg.Source,
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
		detector:  detector,
		limiter:   ratelimit.NewLimiter(cfg.RateLimitPerMinute),
		listCache: cache.NewLRUCache[cachedList](cfg.CacheSize, cfg.CacheTTL),
		caches:    cache.NewManager(),
	}
	s.caches.Register(s.listCache)
	s.caches.StartCleanup(cfg.CacheTTL)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		s.static = sub
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.Handle("/api/bills", s.api(s.handleListBills))
	mux.Handle("/api/bills/{id}", s.api(s.handleGetBill))
	mux.Handle("/api/tags", s.api(s.handleTags))
	mux.Handle("/api/preview", s.api(s.handlePreview))
	mux.Handle("/api/", s.api(handleAPINotFound))

	mux.HandleFunc("/{$}", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	var handler http.Handler = mux
	handler = detector.Middleware(handler)
	handler = security.Headers(handler)
	handler = applog.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// api wraps a read-only API handler with the method check and the per-IP
// rate limit.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, writeRateLimited)
	return limit(allowRead(h))
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
