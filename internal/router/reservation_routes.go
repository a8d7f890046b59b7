package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/handler"
	"github.com/iliyamo/roomescape/internal/middleware"
)

// admin returns the chain guarding administrator writes.
func admin(opts Options) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.RequireLogin(opts.Resolver),
		middleware.RequireAdmin(),
		opts.Cache.Invalidate(),
	}
}

// RegisterTimes registers /times. Reads are public and cached; writes
// require an administrator.
func RegisterTimes(e *echo.Echo, h *handler.TimeHandler, opts Options) {
	g := e.Group("/times")
	cached := opts.Cache.Middleware()

	g.GET("", h.List, cached)
	g.GET("/available", h.Available, cached)
	g.POST("", h.Create, admin(opts)...)
	g.DELETE("/:id", h.Delete, admin(opts)...)
}

// RegisterThemes registers /themes.
func RegisterThemes(e *echo.Echo, h *handler.ThemeHandler, opts Options) {
	g := e.Group("/themes")
	cached := opts.Cache.Middleware()

	g.GET("", h.List, cached)
	g.GET("/popular", h.Popular, cached)
	g.POST("", h.Create, admin(opts)...)
	g.DELETE("/:id", h.Delete, admin(opts)...)
}

// RegisterReservations registers /reservations. Anyone may book; a valid
// token cookie only supplies the default name and the member id of the
// published event.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, opts Options) {
	g := e.Group("/reservations")
	optional := middleware.OptionalLogin(opts.Resolver)

	g.GET("", h.List, opts.Cache.Middleware())
	g.POST("", h.Create, optional, opts.Cache.Invalidate())
	g.DELETE("/:id", h.Delete, optional, opts.Cache.Invalidate())
}
