package app

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Subodhrana390/cropsense/internal/plugins/advisor"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
	"github.com/Subodhrana390/cropsense/internal/plugins/chatbot"
	"github.com/Subodhrana390/cropsense/internal/plugins/messages"
)

// RegisterRoutes sets up all application routes. It registers the page
// shell and health endpoints directly and delegates to each plugin's route
// registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Page shell ---
	// The SPA bundle owns rendering; the server just hands out the shell.
	// The session guard has already decided redirects before these run.
	shell := func(c echo.Context) error {
		return c.File("static/index.html")
	}
	e.GET("/", shell)
	e.GET("/login", shell)
	e.GET("/signup", shell)
	e.GET("/dashboard", shell)
	e.GET("/dashboard/*", shell)

	// Health check endpoint for container orchestration. Degrades to 503
	// when either backing store is unreachable.
	e.GET("/healthz", a.healthz)

	// --- Auth actions (public) ---
	auth.RegisterRoutes(e, a.authHandler)

	// --- API routes ---
	// Everything under /api/v1 requires a valid session and answers 401
	// JSON instead of redirecting.
	api := e.Group("/api/v1", auth.RequireAuth(a.Tokens))
	auth.RegisterAPIRoutes(api, a.authHandler)
	advisor.RegisterAPIRoutes(api, a.advisorHandler)
	chatbot.RegisterAPIRoutes(api, a.chatbotHandler)
	messages.RegisterAPIRoutes(api, a.messagesHandler)
}

// healthz reports liveness of the process and its backing stores.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok", "redis": "ok"}
	code := http.StatusOK

	if err := a.DB.PingContext(ctx); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = "unreachable"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, status)
}
