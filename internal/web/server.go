package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/tictactoe-rounds/internal/app"
	"github.com/jaminalder/tictactoe-rounds/internal/logging"
)

type options struct {
	log     *slog.Logger
	metrics http.Handler
}

type Option func(*options)

// WithLogger logs requests and failures on l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetricsHandler exposes h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(o *options) { o.metrics = h }
}

// NewServer wires routes and returns an http.Handler. It installs itself as
// the service's broadcast renderer so SSE subscribers get #app fragments.
func NewServer(s *app.Service, opts ...Option) http.Handler {
	o := options{log: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	h := &handlers{svc: s, tpl: loadTemplates(), log: o.log.With("component", "web")}
	s.SetRenderer(h.renderApp)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Get("/events", h.events)
	r.Get("/healthz", h.healthz)
	r.Get("/manifest.webmanifest", h.manifest)
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics)
	}

	r.Route("/setup", func(r chi.Router) {
		r.Post("/name", h.setName)
		r.Post("/rounds", h.setRounds)
	})
	r.Post("/start", h.start)
	r.Post("/cells/{index}", h.play)
	r.Post("/next-round", h.nextRound)
	r.Post("/reset", h.reset)
	r.Post("/back-to-setup", h.backToSetup)
	r.Post("/install/dismiss", h.dismissInstall)
	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
