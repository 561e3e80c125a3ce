package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/repforge/internal/generate"
	"github.com/meltforce/repforge/internal/models"
	"github.com/meltforce/repforge/internal/storage"
)

// Generator runs the workout generation pipeline.
// *generate.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, principal models.Principal, req models.GenerationRequest) (*generate.Result, error)
}

var _ Generator = (*generate.Service)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db     *storage.DB
	gen    Generator
	log    *slog.Logger
	apiKey string
	whois  WhoIsClient
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, gen Generator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:     db,
		gen:    gen,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches identity resolution to the tailnet. Must be
// called before serving; without it all requests run as the dev user.
func (s *Server) SetTailscale(whois WhoIsClient) {
	s.whois = whois
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}
		r.Post("/workouts/generate", s.handleGenerateWorkout)
		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Patch("/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/stats", s.handleStats)
		r.Get("/me", s.handleMe)
	})
}

// identity dispatches to the tailnet resolver when configured, the dev
// user otherwise. Resolution mode is fixed before serving starts.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois != nil {
			TailscaleIdentity(s.whois, s.db, s.log)(next).ServeHTTP(w, r)
			return
		}
		DevIdentity(next).ServeHTTP(w, r)
	})
}
