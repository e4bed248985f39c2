package rest

import (
	"net/http"
	"strings"

	"versegraph/application/commands/bus"
	querybus "versegraph/application/queries/bus"
	"versegraph/interfaces/http/rest/handlers"
	"versegraph/interfaces/http/rest/middleware"
	v1 "versegraph/interfaces/http/rest/v1"
	"versegraph/pkg/auth"
	pkgerrors "versegraph/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether the backing store is reachable
type ReadinessCheck func(r *http.Request) error

// RouterOptions toggles optional router behavior
type RouterOptions struct {
	EnableCORS     bool
	AllowedOrigins []string
	Debug          bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	validator  middleware.TokenValidator
	limiter    auth.RateLimiter
	ready      ReadinessCheck
	opts       RouterOptions
	logger     *zap.Logger
}

// NewRouter creates a new router instance. limiter and ready may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator middleware.TokenValidator,
	limiter auth.RateLimiter,
	ready ReadinessCheck,
	opts RouterOptions,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		validator:  validator,
		limiter:    limiter,
		ready:      ready,
		opts:       opts,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Recover)
	router.Use(middleware.Logger(rt.logger))
	router.Use(versionMiddleware)

	if rt.opts.EnableCORS {
		origins := rt.opts.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	graphHandler := handlers.NewGraphHandler(rt.queryBus, errorHandler, rt.logger)
	nodeHandler := handlers.NewNodeHandler(rt.commandBus, errorHandler, rt.logger)
	notesHandler := handlers.NewNotesHandler(rt.commandBus, rt.queryBus, errorHandler, rt.logger)
	scriptureHandler := handlers.NewScriptureHandler(errorHandler)

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	authenticate := middleware.Authenticate(rt.validator, errorHandler, rt.logger)

	// Legacy clients
	router.With(authenticate).Mount("/api/v1", v1.NewRouter(graphHandler))

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/graph", func(r chi.Router) {
			r.Get("/", graphHandler.GetGraph)
			r.Group(func(r chi.Router) {
				if rt.limiter != nil {
					r.Use(middleware.RateLimit(rt.limiter, errorHandler, rt.logger))
				}
				r.Post("/generate", graphHandler.GenerateGraph)
			})
			r.Patch("/nodes/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/nodes/{nodeID}", nodeHandler.DeleteNode)
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/exists", notesHandler.NotesExist)
			r.Post("/{noteID}/graph", notesHandler.GenerateNoteGraph)
		})

		r.Route("/scripture", func(r chi.Router) {
			r.Get("/parse", scriptureHandler.ParseReference)
			r.Post("/entities", scriptureHandler.DetectEntities)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.ready != nil {
		if err := rt.ready(req); err != nil {
			rt.logger.Warn("Readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/v2") {
			w.Header().Set("X-API-Version", "v2")
		}
		w.Header().Set("X-API-Latest", "v2")
		next.ServeHTTP(w, r)
	})
}
