// Package srv serves chapter generation, book export and prompt administration
// over HTTP.
package srv

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	secure "github.com/srikrsna/security-headers"

	"github.com/opd-ai/bookster/bookcompiler"
	"github.com/opd-ai/bookster/config"
	bookster "github.com/opd-ai/bookster/src"
)

type Server struct {
	router    chi.Router
	cfg       config.ServerConfig
	generator *bookster.Generator
	compiler  *bookcompiler.BookCompiler
	prompts   bookster.PromptStore
	// exports maps written file names to their results. Expired entries
	// take their file with them.
	exports *cache.Cache
}

// NewServer wires the routes. prompts may be nil. exportTTL <= 0 keeps
// exports until the process exits.
func NewServer(cfg config.ServerConfig, gen *bookster.Generator, compiler *bookcompiler.BookCompiler, prompts bookster.PromptStore, exportTTL time.Duration) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		generator: gen,
		compiler:  compiler,
		prompts:   prompts,
	}
	if exportTTL > 0 {
		s.exports = cache.New(exportTTL, exportTTL/4)
		s.exports.OnEvicted(s.removeExport)
	} else {
		s.exports = cache.New(cache.NoExpiration, 0)
	}
	s.setupRoutes()
	return s
}

func (s *Server) removeExport(name string, _ interface{}) {
	if err := s.compiler.Remove(name); err != nil {
		slog.Warn("failed to remove expired export", "file", name, "error", err)
		return
	}
	slog.Debug("expired export removed", "file", name)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-Id")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) securityHeaders() func(http.Handler) http.Handler {
	headers := &secure.Secure{
		FrameOption:        secure.FrameDeny,
		ContentTypeNoSniff: true,
		XSSFilterBlock:     true,
	}
	if s.cfg.TLS.Enabled {
		headers.STSMaxAgeSeconds = 31536000
		headers.STSIncludeSubdomains = true
	}
	return headers.Middleware()
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware)
	s.router.Use(s.securityHeaders())
	s.router.Use(corsMiddleware)

	s.router.Get("/healthz", handleHealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}

		r.Group(func(r chi.Router) {
			if s.cfg.RateLimit > 0 {
				r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
			}
			r.Post("/chapters/generate", makeHandler(s.handleGenerateChapters))
			r.Post("/chapters/regenerate", makeHandler(s.handleRegenerateChapter))
			r.Post("/export", makeHandler(s.handleExport))
		})
		r.Get("/exports/{file}", makeHandler(s.handleDownload))

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/prompts/{kind}", makeHandler(s.handleGetPrompt))
			r.Put("/prompts/{kind}", makeHandler(s.handlePutPrompt))
		})
	})
}
