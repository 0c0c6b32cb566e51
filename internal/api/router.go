package api

import (
	"log/slog"
	"net/http"
	"time"

	"multimodalchat/internal/config"
	"multimodalchat/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration.
type RouterDependencies struct {
	ChatHandler       *handlers.ChatHandlers
	AnnotationHandler *handlers.AnnotationHandlers
	StreamHandler     *handlers.StreamHandler
	Config            *config.Config
	Logger            *slog.Logger
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := []string{"*"}
	if deps.Config != nil && len(deps.Config.AllowedOrigins) > 0 {
		origins = deps.Config.AllowedOrigins
	}

	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)  // Inject request ID into context
	r.Use(middleware.RealIP)     // Use X-Forwarded-For or X-Real-IP
	r.Use(RequestLogger(logger)) // Structured request log
	r.Use(middleware.Recoverer)  // Recover from panics, return 500

	// --- CORS Configuration ---
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// The stream is long-lived, so it sits outside the timeout group.
	if deps.StreamHandler != nil {
		r.Get("/v1/messages/stream", deps.StreamHandler.HandleStream)
	} else {
		logger.Warn("StreamHandler dependency is nil, skipping /v1/messages/stream route")
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// --- Mount Message Routes ---
		if deps.ChatHandler != nil {
			r.Get("/v1/messages", deps.ChatHandler.HandleListMessages)
			r.Post("/v1/messages", deps.ChatHandler.HandleSendMessage)
		} else {
			logger.Warn("ChatHandler dependency is nil, skipping /v1/messages routes")
		}

		// --- Mount Annotation Routes ---
		if deps.AnnotationHandler != nil {
			ah := deps.AnnotationHandler
			r.Get("/v1/messages/{messageID}/annotations", ah.HandleGetMessageAnnotations)
			r.Post("/v1/messages/{messageID}/annotations/sessions", ah.HandleOpenSession)
			r.Route("/v1/annotation-sessions/{sessionID}", func(r chi.Router) {
				r.Get("/", ah.HandleGetSession)
				r.Post("/clicks", ah.HandleClick)
				r.Put("/label", ah.HandleSetLabel)
				r.Post("/commit", ah.HandleCommit)
				r.Delete("/annotations/{annotationID}", ah.HandleRemove)
				r.Put("/color", ah.HandleSelectColor)
				r.Post("/save", ah.HandleSave)
				r.Post("/cancel", ah.HandleCancel)
			})
		} else {
			logger.Warn("AnnotationHandler dependency is nil, skipping annotation routes")
		}
	})

	return r
}
