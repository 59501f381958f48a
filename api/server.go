/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logging:    zap request log, or chi's Logger when no zap logger is set
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the questionnaire front end

ROUTE GROUPS:
  /api/compute, /api/form-guide   Computation
  /api/schedules/*                Year schedules
  /api/questions/*                Questionnaire
  /api/checkpoints/*, /api/sessions/*  Analytics checkpoints
  /api/scenarios/*                Sample profiles
  /api/email                      Summary email
  /api/healthz                    Health

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/cukai/cmd/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if opts.Logger != nil {
		r.Use(requestLogger(opts.Logger.Named("http")))
	} else {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/compute", h.Compute)
		r.Post("/form-guide", h.FormGuide)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Get("/{year}", h.GetSchedule)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", h.ListQuestions)
			r.Post("/visible", h.VisibleQuestions)
		})

		r.Route("/checkpoints", func(r chi.Router) {
			r.Post("/", h.RecordCheckpoint)
			r.Get("/funnel", h.Funnel)
		})
		r.Get("/sessions/{id}/checkpoints", h.SessionCheckpoints)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/{id}", h.GetScenario)
		})

		r.Post("/email", h.SendEmail)
		r.Get("/healthz", h.Health)
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
