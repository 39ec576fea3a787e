package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/ftmpl/internal/ctyconv"
	"github.com/vk/ftmpl/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

// Handler returns the HTTP API of the render server.
//
//	GET  /health                 liveness
//	GET  /metrics                render metrics
//	GET  /modules                modules in the search paths
//	POST /render/{module}/{unit} render with a JSON object of named arguments
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", a.healthHandler)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	r.Get("/modules", a.modulesHandler)
	r.Post("/render/{module}/{unit}", a.renderHandler)
	return r
}

// healthHandler reports that the server is up.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) modulesHandler(w http.ResponseWriter, r *http.Request) {
	mods, err := a.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(mods)
}

func (a *App) renderHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "request body must be a JSON object: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	args := Args{Named: make(map[string]cty.Value, len(body))}
	for name, raw := range body {
		v, err := ctyconv.FromGo(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("argument %q: %v", name, err), http.StatusBadRequest)
			return
		}
		args.Named[name] = v
	}

	out, err := a.Render(r.Context(), chi.URLParam(r, "module"), chi.URLParam(r, "unit"), args)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func statusFor(err error) int {
	var (
		argErr    *runtime.ArgumentError
		renderErr *runtime.RenderError
	)
	switch {
	case errors.Is(err, ErrModuleNotFound), errors.Is(err, runtime.ErrUnknownUnit):
		return http.StatusNotFound
	case errors.As(err, &argErr):
		return http.StatusBadRequest
	case errors.As(err, &renderErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// logRequests logs every request except health checks and metrics scrapes.
func (a *App) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(a.Context(r.Context())))

		if strings.HasPrefix(r.URL.Path, "/health") || r.URL.Path == "/metrics" {
			return
		}
		a.logger.Debug("HTTP request.",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve runs the render server on addr until ctx is cancelled, then shuts
// it down gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Render server starting.", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.logger.Info("Shutting down render server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Render server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Render server shut down gracefully.")
	return nil
}
