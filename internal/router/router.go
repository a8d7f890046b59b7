// Package router registers the API routes and the middleware chain on Echo.
package router

import (
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/roomescape/internal/handler"
	"github.com/iliyamo/roomescape/internal/middleware"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Times        *handler.TimeHandler
	Themes       *handler.ThemeHandler
	Reservations *handler.ReservationHandler
	Health       *handler.HealthHandler
}

// Options carries the shared middleware dependencies. Cache and Limiter may
// be nil, in which case they pass requests through.
type Options struct {
	Logger         zerolog.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
	Resolver       middleware.MemberResolver
	Cache          *middleware.ResponseCache
	Limiter        *middleware.TokenBucket
}

// RegisterRoutes installs the global middleware and every route group.
func RegisterRoutes(e *echo.Echo, h Handlers, opts Options) {
	e.HTTPErrorHandler = middleware.ErrorHandler

	e.Use(
		middleware.RequestID(),
		middleware.ContextEnhancer(opts.Logger),
		middleware.Tracing(),
		middleware.RequestLogger(),
		middleware.Recover(),
		middleware.Secure(),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: opts.RequestTimeout}))
	}

	e.GET("/healthz", h.Health.Live)
	e.GET("/readyz", h.Health.Ready)

	RegisterAuth(e, h.Auth, opts)
	RegisterTimes(e, h.Times, opts)
	RegisterThemes(e, h.Themes, opts)
	RegisterReservations(e, h.Reservations, opts)
}

// RegisterAuth registers login, logout, login check and member routes. Login
// and signup are rate limited per client.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, opts Options) {
	limit := opts.Limiter.Middleware()
	login := middleware.RequireLogin(opts.Resolver)

	e.POST("/login", a.Login, limit)
	e.GET("/login/check", a.Check, login)
	e.POST("/logout", a.Logout)

	e.POST("/members", a.Signup, limit)
	e.GET("/members", a.ListMembers, login, middleware.RequireAdmin())
}
