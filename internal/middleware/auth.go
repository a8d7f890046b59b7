package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/model"
)

// CookieName is the cookie holding the login token.
const CookieName = "token"

// MemberResolver turns a token into the member it was issued to.
type MemberResolver interface {
	GetLoginMember(ctx context.Context, token string) (model.LoginMember, error)
}

// RequireLogin rejects requests whose token cookie is missing or does not
// resolve to a member. On success the member is available via
// GetLoginMember and is added to the request logger.
func RequireLogin(resolver MemberResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := TokenFromCookie(c)
			if token == "" {
				return errs.Unauthorized("no logged-in member")
			}
			m, err := resolver.GetLoginMember(c.Request().Context(), token)
			if err != nil {
				GetLogger(c).Debug().Err(err).Msg("token rejected")
				return errs.Unauthorized("invalid or expired token")
			}
			attach(c, m)
			return next(c)
		}
	}
}

// OptionalLogin resolves the member when a valid token cookie is present and
// otherwise lets the request through anonymously.
func OptionalLogin(resolver MemberResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := TokenFromCookie(c); token != "" {
				if m, err := resolver.GetLoginMember(c.Request().Context(), token); err == nil {
					attach(c, m)
				}
			}
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireLogin.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m := GetLoginMember(c)
			if m == nil {
				return errs.Unauthorized("no logged-in member")
			}
			if !m.IsAdmin() {
				return errs.Forbidden("administrator role required")
			}
			return next(c)
		}
	}
}

// TokenFromCookie returns the token cookie's value, or "".
func TokenFromCookie(c echo.Context) string {
	ck, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func attach(c echo.Context, m model.LoginMember) {
	c.Set(LoginMemberKey, &m)
	l := GetLogger(c).With().Int64("member_id", m.ID).Str("member_role", string(m.Role)).Logger()
	setLogger(c, l)
}
