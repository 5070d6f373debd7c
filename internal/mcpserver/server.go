package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/obstack/obtools/pkg/metricskey"
	"github.com/obstack/obtools/pkg/obdb"
)

var logger = xlog.NewPackageLogger("github.com/obstack/obtools", "mcpserver")

// Server exposes the database tools over MCP streamable HTTP.
type Server struct {
	cfg  Config
	mcp  *mcp.Server
	http *http.Server
}

func New(cfg Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "OceanBase Tools",
		Version: cfg.Version,
	}, nil)

	s := &Server{
		cfg: cfg,
		mcp: mcpServer,
	}

	if err := s.registerTools(); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.mcp
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	wrapped := s.observeMiddleware(handler)
	if len(cfg.AllowedTokens) > 0 {
		wrapped = s.authMiddleware(wrapped)
	}
	mux.Handle("/", wrapped)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/readyz", s.readyzHandler)

	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	serveErrCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- errors.Wrap(err, "failed to listen and serve")
		}
	}()

	logger.ContextKV(ctx, xlog.INFO,
		"reason", "listening",
		"addr", s.cfg.ListenAddr,
	)

	select {
	case <-ctx.Done():
		logger.ContextKV(ctx, xlog.INFO,
			"reason", "stopping",
			"err", ctx.Err(),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "failed to shutdown server")
		}
		return nil
	case err := <-serveErrCh:
		return err
	}
}

// readyzHandler reports ready when the database accepts the configured
// credentials.
func (s *Server) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := obdb.ValidateCredentials(ctx, s.cfg.DB, nil); err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "not_ready",
			"err", err.Error(),
		)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database not ready\n"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

// authMiddleware enforces bearer token authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing or malformed authorization header")
			return
		}
		for _, allowed := range s.cfg.AllowedTokens {
			if token == allowed {
				next.ServeHTTP(w, r)
				return
			}
		}
		unauthorized(w, "invalid token")
	})
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("unauthorized: " + msg + "\n"))
}

// observeMiddleware logs each request with a correlation ID and records
// request metrics.
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		reqID := uuid.NewString()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		metricskey.StatsHTTPRequests.IncrCounter(1,
			r.Method, r.URL.Path, fmt.Sprintf("%d", wrapped.statusCode))
		metricskey.PerfHTTPRequest.MeasureSince(started, r.URL.Path)

		logger.ContextKV(r.Context(), xlog.DEBUG,
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"elapsed", time.Since(started).String(),
		)
	})
}

// responseWriter captures the status code written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
