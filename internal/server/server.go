package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/shivansh-labs/namegate/internal/analyser"
	"github.com/shivansh-labs/namegate/internal/cache"
	"github.com/shivansh-labs/namegate/internal/history"
)

// Version is the reported service version, overridable at link time.
var Version = "2.0.0"

// Server holds the HTTP API and its collaborators.
type Server struct {
	Addr      string
	Logger    *slog.Logger
	Cache     *cache.Cache
	History   *history.Store
	Checker   Checker
	Adviser   analyser.Adviser
	StaticDir string

	httpServer *http.Server
}

// Handler builds the route table wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /check_name", s.handleCheckName)
	mux.HandleFunc("POST /conflict-check", s.handleConflictCheck)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /docs-info", s.handleDocsInfo)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /", s.handleRoot)

	if s.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/",
			http.FileServer(http.Dir(s.StaticDir))))
	}

	return s.withRequestLog(mux)
}

// Run serves until the context is canceled, then shuts down gracefully,
// letting in-flight browser checks finish.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    s.Addr,
		Handler: s.Handler(),
		// Browser automation holds a request open for minutes; only the
		// header read gets a tight bound.
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", "addr", s.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// responseRecorder captures the status code for the request log.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags every request with a generated id and logs method,
// path, status and duration on completion.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(r.Context()))

		s.Logger.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

// handleRoot serves the frontend index when a static dir is configured.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.StaticDir != "" {
		index := filepath.Join(s.StaticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			http.ServeFile(w, r, index)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("<h1>Frontend not found</h1><p>Place the built frontend in the static directory.</p>"))
}
