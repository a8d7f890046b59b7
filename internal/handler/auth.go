package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/middleware"
	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/service"
	"github.com/iliyamo/roomescape/internal/utils"
	"github.com/iliyamo/roomescape/internal/validation"
)

// AuthService is what AuthHandler needs from the member service.
type AuthService interface {
	Login(ctx context.Context, email, password string) (utils.IssuedToken, error)
	Signup(ctx context.Context, name, email, password string) (model.Member, error)
	List(ctx context.Context) ([]model.Member, error)
}

// AuthHandler serves login, logout, login check and member registration.
type AuthHandler struct {
	svc          AuthService
	secureCookie bool
}

func NewAuthHandler(svc AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookie: secureCookie}
}

// Login handles POST /login. On success the token is set as an HttpOnly
// cookie and the body is empty.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	tok, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}
	c.SetCookie(h.cookie(tok.Value, tok.Exp))
	return c.NoContent(http.StatusOK)
}

// Check handles GET /login/check; RequireLogin has already resolved the
// member.
func (h *AuthHandler) Check(c echo.Context) error {
	m := middleware.GetLoginMember(c)
	if m == nil {
		return serviceError(service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, loginCheckResponse{Name: m.Name})
}

// Logout handles POST /logout by expiring the token cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ck := h.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return c.NoContent(http.StatusOK)
}

// Signup handles POST /members.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.svc.Signup(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}
	location(c, "/members", m.ID)
	return c.JSON(http.StatusCreated, newMemberResponse(m))
}

// ListMembers handles GET /members (administrators only).
func (h *AuthHandler) ListMembers(c echo.Context) error {
	members, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(members, newMemberResponse))
}

func (h *AuthHandler) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
