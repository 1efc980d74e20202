package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/gdpdash/internal/dash"
	"github.com/lox/gdpdash/internal/dataset"
	"github.com/lox/gdpdash/internal/metrics"
)

const DefaultPlotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// Config holds server settings that don't come from the dataset.
type Config struct {
	Port      string
	PlotlyURL string
	SecretKey string
}

type Server struct {
	ds   *dataset.Dataset
	cfg  Config
	tmpl *template.Template
	app  *dash.App
}

// NewServer wires the two chart callbacks to ds. The dataset is shared
// by every request and must not be modified afterwards.
func NewServer(ds *dataset.Dataset, cfg Config) (*Server, error) {
	if cfg.Port == "" {
		cfg.Port = "8050"
	}
	if cfg.PlotlyURL == "" {
		cfg.PlotlyURL = DefaultPlotlyURL
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key required")
	}
	s := &Server{
		ds:   ds,
		cfg:  cfg,
		tmpl: newTemplates(),
		app:  dash.New(),
	}
	if err := s.registerCallbacks(); err != nil {
		return nil, fmt.Errorf("register callbacks: %w", err)
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("GET /static/", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /_dash-layout", s.handleDashLayout)
	mux.HandleFunc("GET /_dash-dependencies", s.handleDashDependencies)
	mux.HandleFunc("POST /_dash-update-component", s.handleDashUpdate)
	mux.HandleFunc("GET /api/indicators", s.handleAPIIndicators)
	mux.HandleFunc("GET /api/countries", s.handleAPICountries)
	mux.HandleFunc("GET /api/years", s.handleAPIYears)
	mux.HandleFunc("GET /api/scatter", s.handleAPIScatter)
	mux.HandleFunc("GET /api/timeline", s.handleAPITimeline)
	return instrument(mux)
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request, records route metrics and turns a panic in
// a handler into a 500.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, p)
				http.Error(rec, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
			metrics.HTTPRequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			log.Printf("%s %s %d %v", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
		}()

		next.ServeHTTP(rec, r)
	})
}
