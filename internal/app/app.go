// Package app is the application bootstrap and dependency injection root.
// It creates and holds all shared infrastructure (DB pool, Redis client,
// Echo instance, AI client) and wires together all plugins.
package app

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Subodhrana390/cropsense/internal/ai"
	"github.com/Subodhrana390/cropsense/internal/apperror"
	"github.com/Subodhrana390/cropsense/internal/config"
	"github.com/Subodhrana390/cropsense/internal/middleware"
	"github.com/Subodhrana390/cropsense/internal/plugins/advisor"
	"github.com/Subodhrana390/cropsense/internal/plugins/auth"
	"github.com/Subodhrana390/cropsense/internal/plugins/chatbot"
	"github.com/Subodhrana390/cropsense/internal/plugins/messages"
)

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// DB is the MariaDB connection pool shared by all plugins.
	DB *sql.DB

	// Redis is the Redis client used for response caching.
	Redis *redis.Client

	// Echo is the HTTP server instance.
	Echo *echo.Echo

	// Tokens signs and verifies session cookies for the route guard.
	Tokens *auth.TokenService

	authHandler     *auth.Handler
	advisorHandler  *advisor.Handler
	chatbotHandler  *chatbot.Handler
	messagesHandler *messages.Handler
}

// New creates a new App instance with the given dependencies, builds every
// plugin's repository/service/handler stack, and configures the Echo
// server with global middleware and error handling.
func New(cfg *config.Config, db *sql.DB, rdb *redis.Client) (*App, error) {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Configure trusted reverse proxy IPs so c.RealIP() returns the actual
	// client IP instead of the proxy's IP. Critical for rate limiting and
	// abuse detection when deployed behind Docker networking.
	middleware.TrustedProxies(e, []string{
		"127.0.0.0/8",    // Localhost
		"10.0.0.0/8",     // Docker default bridge
		"172.16.0.0/12",  // Docker bridge (alternate range)
		"192.168.0.0/16", // Common LAN
		"fd00::/8",       // IPv6 private
	})

	tokens, err := auth.NewTokenService([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	gen := ai.NewClient(cfg.AI)
	if !gen.Configured() {
		slog.Warn("GEMINI_API_KEY not set; advisory and chatbot endpoints will answer 503")
	}

	userRepo := auth.NewUserRepository(db)
	authService := auth.NewAuthService(userRepo, tokens)
	advisorService := advisor.NewAdvisorService(gen, rdb)
	chatbotService := chatbot.NewChatbotService(chatbot.NewMessageRepository(db), gen)
	messageService := messages.NewMessageService(messages.NewMessageRepository(db), userRepo)

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Echo:   e,
		Tokens: tokens,

		authHandler:     auth.NewHandler(authService, tokens, !cfg.IsDevelopment()),
		advisorHandler:  advisor.NewHandler(advisorService),
		chatbotHandler:  chatbot.NewHandler(chatbotService),
		messagesHandler: messages.NewHandler(messageService),
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (the SPA bundle, CSS, images).
	e.Static("/static", "static")

	return app, nil
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (the session
// guard) runs last, so every guard decision is already logged and behind
// the security headers.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery())

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger())

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS -- the SPA is served from the same origin, but credentialed
	// cross-origin requests from the configured base URL are allowed.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{a.Config.BaseURL},
		AllowCredentials: true,
	}))

	// CSRF -- double-submit cookie pattern on state-changing page requests.
	a.Echo.Use(middleware.CSRF())

	// Session guard -- classifies every page path and redirects based on
	// session validity. API routes are guarded separately via RequireAuth.
	a.Echo.Use(auth.Guard(a.Tokens))
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to JSON responses; validation errors additionally carry the
// per-field messages. Unauthenticated page requests are redirected to the
// login page instead.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "An unexpected error occurred"
	var fields []string

	// Check if it's our domain error type.
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		fields = appErr.Fields

		// Log internal errors with the underlying cause.
		if appErr.Internal != nil {
			slog.Error("internal error",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Check for Echo's built-in HTTP errors (e.g., 404 from router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(code)
			}
		} else {
			// Truly unexpected error -- log it.
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	// Unauthenticated page requests navigate to the login form; everything
	// else gets JSON, which the SPA renders inline.
	if code == http.StatusUnauthorized && !isAPIRequest(c) {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	body := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
	}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	c.JSON(code, body)
}

// isAPIRequest returns true if the request is targeting the API.
func isAPIRequest(c echo.Context) bool {
	return len(c.Request().URL.Path) >= 4 && c.Request().URL.Path[:4] == "/api"
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting CropSense server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
	)
	return a.Echo.Start(addr)
}
