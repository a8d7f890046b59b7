// Package middleware contains the Echo middleware of the API: request ids,
// request-scoped logging, the global error handler, cookie authentication,
// the Redis response cache, rate limiting and tracing.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/roomescape/internal/model"
)

const (
	// RequestIDHeader carries the correlation id in both directions.
	RequestIDHeader = "X-Request-ID"

	RequestIDKey   = "request_id"
	LoggerKey      = "logger"
	LoginMemberKey = "login_member"
)

// RequestID reuses the caller's X-Request-ID or generates one, and echoes it
// back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			c.Set(RequestIDKey, id)
			c.Response().Header().Set(RequestIDHeader, id)
			return next(c)
		}
	}
}

// GetRequestID returns the id set by RequestID, or "".
func GetRequestID(c echo.Context) string {
	id, _ := c.Get(RequestIDKey).(string)
	return id
}

// ContextEnhancer derives a request logger from base carrying the request id,
// method, route and client ip. It is stored in the Echo context and in the
// request's context.Context so services can reach it with zerolog.Ctx.
func ContextEnhancer(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			l := base.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()
			setLogger(c, l)
			return next(c)
		}
	}
}

func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	r := c.Request()
	c.SetRequest(r.WithContext(l.WithContext(r.Context())))
}

// GetLogger returns the request logger, or a no-op logger when
// ContextEnhancer did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// GetLoginMember returns the member resolved by the auth middleware, or nil.
func GetLoginMember(c echo.Context) *model.LoginMember {
	m, _ := c.Get(LoginMemberKey).(*model.LoginMember)
	return m
}
