package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/validation"
)

// ThemeService is what ThemeHandler needs from the theme service.
type ThemeService interface {
	List(ctx context.Context) ([]model.Theme, error)
	Create(ctx context.Context, th model.Theme) (model.Theme, error)
	Delete(ctx context.Context, id int64) error
	Popular(ctx context.Context, limit int) ([]model.PopularTheme, error)
}

// ThemeHandler serves /themes.
type ThemeHandler struct {
	svc ThemeService
}

func NewThemeHandler(svc ThemeService) *ThemeHandler {
	return &ThemeHandler{svc: svc}
}

// List handles GET /themes.
func (h *ThemeHandler) List(c echo.Context) error {
	themes, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(themes, newThemeResponse))
}

// Create handles POST /themes.
func (h *ThemeHandler) Create(c echo.Context) error {
	var req themeRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	th, err := h.svc.Create(c.Request().Context(), model.Theme{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return serviceError(err)
	}
	location(c, "/themes", th.ID)
	return c.JSON(http.StatusCreated, newThemeResponse(th))
}

// Delete handles DELETE /themes/:id.
func (h *ThemeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Popular handles GET /themes/popular?limit=N.
func (h *ThemeHandler) Popular(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return errs.BadRequest("validation failed", errs.FieldError{Field: "limit", Message: "must be an integer"})
	}
	themes, err := h.svc.Popular(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(themes, func(p model.PopularTheme) popularThemeResponse {
		return popularThemeResponse{themeResponse: newThemeResponse(p.Theme), ReservationCount: p.ReservationCount}
	}))
}
