package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/roomescape/internal/errs"
)

// CORS allows the configured origins. With none configured it allows any.
func CORS(origins []string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowCredentials: len(origins) > 1 || origins[0] != "*",
	})
}

// Secure adds the standard security headers.
func Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// Recover turns handler panics into 500 responses and logs them.
func Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	})
}

// RequestLogger writes one "API" line per request with the level chosen by
// the final status.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogMethod:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler has not written the response yet when a
			// handler returns an error, so derive the status from it.
			status := v.Status
			if v.Error != nil {
				status = statusOf(v.Error)
			}

			l := GetLogger(c)
			var e *zerolog.Event
			switch {
			case status >= 500:
				e = l.Error().Err(v.Error)
			case status >= 400:
				e = l.Warn()
			default:
				e = l.Info()
			}
			e.Dur("latency", v.Latency).
				Int("status", status).
				Str("uri", v.URI).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")
			return nil
		},
	})
}

// ErrorHandler is the Echo HTTPErrorHandler. Every failure leaves the API as
//
//	{"message": "...", "details": [...]}
func ErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)
	if httpErr.Status >= 500 {
		GetLogger(c).Error().Err(err).Int("status", httpErr.Status).Msg("request failed")
	}
	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr.Body())
}

func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound:
			return errs.NotFound("route not found")
		case http.StatusMethodNotAllowed:
			return errs.New(http.StatusMethodNotAllowed, "method not allowed")
		}
		if msg, ok := echoErr.Message.(string); ok {
			return errs.New(echoErr.Code, msg)
		}
		return errs.New(echoErr.Code, "")
	}
	return errs.Internal()
}

func statusOf(err error) int {
	return toHTTPError(err).Status
}
