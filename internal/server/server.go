package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DaraMoh/solo-gym-app/internal/ingest/alpha"
	"github.com/DaraMoh/solo-gym-app/internal/metrics"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker *tracker.Tracker
	alpha   *alpha.Provider
	metrics *metrics.Manager
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	whois   WhoIsClient
	now     func() time.Time
}

// New creates a new Server with all routes configured.
func New(tr *tracker.Tracker, alphaProvider *alpha.Provider, m *metrics.Manager, apiKey string, log *slog.Logger) *Server {
	if m == nil {
		m = metrics.NewTestManager()
	}
	s := &Server{
		tracker: tr,
		alpha:   alphaProvider,
		metrics: m,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the local user to the tailnet
// login of each peer.
func (s *Server) SetTailscale(lc WhoIsClient) {
	s.whois = lc
}

// Handle mounts h at pattern behind the logging, CORS and identity
// middleware.
func (s *Server) Handle(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/", s.handleRoot)
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/profile", s.handleProfile)
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Get("/missions", s.handleMissions)
		r.Get("/exercises", s.handleExercises)
		r.Get("/exercises/popular", s.handlePopularExercises)
		r.Get("/templates", s.handleListTemplates)

		// Writes (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/workouts", s.handleCompleteWorkout)
			r.Put("/workouts/{id}", s.handleUpdateWorkout)
			r.Delete("/workouts/{id}", s.handleDeleteWorkout)
			r.Post("/exercises", s.handleAddExercise)
			r.Post("/templates", s.handleSaveTemplate)
			r.Delete("/templates/{id}", s.handleDeleteTemplate)
			r.Post("/templates/{id}/start", s.handleStartTemplate)
			r.Post("/ingest/alpha", s.handleAlphaIngest)
			r.Post("/reset", s.handleReset)
		})
	})
}

func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
	})
}
