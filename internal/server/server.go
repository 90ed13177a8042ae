// Package server exposes the diagnosis engine over HTTP.
package server

import (
	"context"
	"image"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/plantscope/plantscope/internal/model"
)

// Classifier produces one Diagnosis per decoded image.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (model.Diagnosis, error)
}

// TreatmentComposer turns a diagnosis into display-ready treatment text.
type TreatmentComposer interface {
	For(ctx context.Context, diag model.Diagnosis) string
}

// Readiness reports which models were loaded at startup, for /health.
type Readiness struct {
	VITLoaded    bool
	GeminiVision bool
	GeminiText   bool
}

// Server holds the request-handling dependencies. Everything here is
// immutable after construction and safe for concurrent reads.
type Server struct {
	classifier Classifier
	treatment  TreatmentComposer
	readiness  Readiness
	classCount int
	threshold  float64
}

// New creates a Server around the given engine components.
func New(classifier Classifier, treatment TreatmentComposer, readiness Readiness, classCount int, threshold float64) *Server {
	return &Server{
		classifier: classifier,
		treatment:  treatment,
		readiness:  readiness,
		classCount: classCount,
		threshold:  threshold,
	}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(accessLog)

	r.Get("/health", s.handleHealth)
	r.Post("/predict", s.handlePredict)
	r.Post("/analyze", s.handleAnalyze)
	return r
}
