// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the favicon service.
package api

import (
	"context"
	_ "embed"
	"favicon/internal/api/handler/faviconhandler"
	"favicon/internal/config"
	"favicon/pkg/controller"
	"favicon/pkg/logger"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// indexPage is the demo page served at the site root.
//
//go:embed static/index.html
var indexPage []byte

const (
	// DocsPath is where the Swagger UI is mounted.
	DocsPath = "/docs/"
	// SpecPath serves the raw OpenAPI document.
	SpecPath = "/specs/v1.yaml"
	// PprofPath is where the net/http/pprof handlers are mounted.
	PprofPath = "/debug/pprof/"
)

// Options are the listener and timeout settings of the API server, usually
// built from the config file with NewOptions. Zero durations keep the
// net/http behaviour of no limit.
type Options struct {
	// Addr to listen on, such as ":8080".
	Addr string
	// ReadTimeout bounds reading a whole request.
	ReadTimeout time.Duration
	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout bounds writing a response. Keep it above RequestTimeout.
	WriteTimeout time.Duration
	// IdleTimeout is how long a keep-alive connection may sit idle.
	IdleTimeout time.Duration
	// RequestTimeout caps every handler through http.TimeoutHandler.
	RequestTimeout time.Duration
	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int
	// MetricsPath is where the Prometheus exposition is served.
	MetricsPath string
}

// NewOptions copies the http section of cfg.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// Deps are the collaborators NewServer needs besides its Options.
type Deps struct {
	faviconhandler.Deps

	// Gatherer backs the metrics endpoint. Nil means prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewServer returns an *http.Server that serves the favicon API under /api/,
// the demo page at the root, Prometheus metrics at MetricsPath, the OpenAPI
// document with its Swagger UI, and pprof. Requests are bounded by RequestTimeout, then wrapped with CORS and logging middlewares.
func NewServer(deps Deps, opts Options) *http.Server {
	mux := http.NewServeMux()

	// favicon api
	mux.Handle("/api/", faviconhandler.New(deps.Deps).Router())

	// demo page
	mux.HandleFunc("GET /{$}", serveIndex)
	mux.HandleFunc("GET /index.html", serveIndex)

	// prometheus metrics server
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// specs file
	mux.HandleFunc(SpecPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// swagger playground
	mux.Handle(DocsPath, v5emb.New(
		"Favicon Service",
		SpecPath,
		DocsPath,
	))

	// pprof
	mux.Handle(PprofPath, controller.PprofMux(PprofPath))

	var handler http.Handler = mux
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"error":"Request timed out"}`)
	}

	// cors
	handler = controller.WithCORS(handler)

	// logger
	handler = controller.WithLogger(handler)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Slog(context.Background()).Handler(), slog.LevelError),
	}
}

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}
