package router

import (
	"github.com/anonto42/social-hub/backend/internal/handlers"
	"github.com/anonto42/social-hub/backend/internal/middleware"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/anonto42/social-hub/backend/pkg/realtime"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Deps are the shared components the routes are built from
type Deps struct {
	Service *services.RelationService
	Hub     *realtime.Hub
	// Verifier is nil when Firebase is not configured
	Verifier middleware.TokenVerifier
	Logger   zerolog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	log := deps.Logger

	// Health check - always accessible
	health := handlers.NewHealthHandler(deps.Hub)
	e.GET("/health", health.HealthCheck)

	api := e.Group("/api/v1")
	var protect []echo.MiddlewareFunc
	if deps.Verifier != nil {
		protect = append(protect, middleware.FirebaseAuthMiddleware(deps.Verifier))
		api.Use(protect...)
		log.Info().Msg("Firebase authentication middleware applied to /api/v1 and /ws.")
	}

	handlers.NewUserHandler(deps.Service).RegisterUserRoutes(api)
	handlers.NewGroupHandler(deps.Service).RegisterGroupRoutes(api)
	handlers.NewPostHandler(deps.Service).RegisterPostRoutes(api)
	handlers.NewLikeHandler(deps.Service).RegisterLikeRoutes(api)
	handlers.NewCommentHandler(deps.Service).RegisterCommentRoutes(api)
	handlers.NewMessageHandler(deps.Service).RegisterMessageRoutes(api)
	log.Debug().Msg("REST routes configured.")

	handlers.NewSocketHandler(deps.Service, deps.Hub, log).RegisterSocketRoutes(e, protect...)
	log.Debug().Msg("Realtime route configured.")
}
