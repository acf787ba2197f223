// Package httpapi exposes the interview session to browser presenters over
// JSON/HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/metrics"
	"github.com/abhisek/intervue/internal/questionbank"
	"github.com/abhisek/intervue/internal/scoring"
	"github.com/abhisek/intervue/internal/store"
)

// Options wires the server's collaborators. Machine is required; the rest
// fall back to the built-in question bank, the heuristic scorer and no
// audit listing.
type Options struct {
	Machine        *interview.Machine
	Questions      questionbank.Source
	Scorer         scoring.Scorer
	Events         store.EventRepo
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type Server struct {
	machine   *interview.Machine
	questions questionbank.Source
	scorer    scoring.Scorer
	events    store.EventRepo
	log       *zap.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	s := &Server{
		machine:   opts.Machine,
		questions: opts.Questions,
		scorer:    opts.Scorer,
		events:    opts.Events,
		log:       opts.Logger,
	}
	if s.questions == nil {
		s.questions = questionbank.Builtin{}
	}
	if s.scorer == nil {
		s.scorer = scoring.Heuristic{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(timeout))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
		router.Handle("/metrics", opts.Metrics.Handler())
	}

	router.Get("/healthz", s.healthz)
	router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.getSession)
		r.Get("/events", s.listEvents)
		r.Post("/candidate", s.setCandidate)
		r.Post("/start", s.start)
		r.Post("/answer", s.answer)
		r.Post("/timeout", s.timeout)
		r.Post("/timer", s.setTimer)
		r.Post("/resume", s.resume)
		r.Post("/complete", s.complete)
		r.Post("/score", s.score)
		r.Post("/reset", s.reset)
	})
	return router
}
