package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/chartgen/internal/config"
	"github.com/matzehuels/chartgen/pkg/cache"
	apperrors "github.com/matzehuels/chartgen/pkg/errors"
	"github.com/matzehuels/chartgen/pkg/observability"
	"github.com/matzehuels/chartgen/pkg/pipeline"
	"github.com/matzehuels/chartgen/pkg/raster"
)

const (
	maxBodyBytes    = 8 << 20
	shutdownTimeout = 10 * time.Second
	requestIDHeader = "X-Request-Id"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Render charts over HTTP",
		Long: `Serve renders chart options posted over HTTP.

  POST /render?format=png&width=800&height=600   body: option JSON
  GET  /formats
  GET  /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}

			instance := uuid.NewString()
			keyer := cache.NewScopedKeyer(nil, "serve:"+instance+":")
			if cfg.Cache.Backend == config.BackendRedis {
				// shared between instances
				keyer = cache.NewScopedKeyer(nil, "serve:")
			}
			runner, err := c.newRunner(ctx, cfg, keyer, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           newServer(runner, logger).routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			logger.Info("Listening on " + addr)

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// server renders posted chart options. Every request builds its own
// surface, so handlers share nothing but the runner.
type server struct {
	runner *pipeline.Runner
	logger *Logger
}

func newServer(runner *pipeline.Runner, logger *Logger) *server {
	return &server{runner: runner, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Get("/formats", s.handleFormats)
	r.Post("/render", s.handleRender)
	return r
}

func (s *server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := append([]string{pipeline.FormatSVG}, raster.Formats...)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(formats)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := pipeline.Resolve(pipeline.RawOptions{
		Input:  string(body),
		Format: q.Get("format"),
		Width:  q.Get("width"),
		Height: q.Get("height"),

		InlineOnly: true,
	})
	if err != nil {
		http.Error(w, errorText(err), http.StatusBadRequest)
		return
	}
	if !pipeline.Supported(req.Format) {
		http.Error(w, "Unsupported format: "+req.Format, http.StatusBadRequest)
		return
	}

	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), req)
	if err != nil {
		s.logger.Error("render failed", "request_id", w.Header().Get(requestIDHeader), "error", err)
		status := http.StatusInternalServerError
		if apperrors.Is(err, apperrors.ErrCodeNoEncoder) {
			status = http.StatusNotImplemented
		}
		http.Error(w, apperrors.UserMessage(err), status)
		return
	}

	w.Header().Set("Content-Type", raster.ContentType(req.Format))
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Write(data)
}

// errorText is the client-facing text of a resolve error.
func errorText(err error) string {
	msg := apperrors.UserMessage(err)
	if causes := apperrors.Causes(err); len(causes) > 0 {
		msg += ": " + strings.Join(causes, "; ")
	}
	return msg
}

// requestID tags each request with a fresh id, or keeps the caller's.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"id", w.Header().Get(requestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
