package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/validation"
)

// TimeService is what TimeHandler needs from the time slot service.
type TimeService interface {
	List(ctx context.Context) ([]model.ReservationTime, error)
	Create(ctx context.Context, startAt time.Time) (model.ReservationTime, error)
	Delete(ctx context.Context, id int64) error
	Available(ctx context.Context, date time.Time, themeID int64) ([]model.AvailableTime, error)
}

// TimeHandler serves /times.
type TimeHandler struct {
	svc TimeService
	loc *time.Location
}

func NewTimeHandler(svc TimeService, loc *time.Location) *TimeHandler {
	if loc == nil {
		loc = time.Local
	}
	return &TimeHandler{svc: svc, loc: loc}
}

// List handles GET /times.
func (h *TimeHandler) List(c echo.Context) error {
	times, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(times, newTimeResponse))
}

// Create handles POST /times.
func (h *TimeHandler) Create(c echo.Context) error {
	var req timeRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	startAt, err := model.ParseClock(req.StartAt)
	if err != nil {
		return errs.BadRequest("validation failed", errs.FieldError{Field: "startAt", Message: "must be a time in HH:mm format"})
	}
	t, err := h.svc.Create(c.Request().Context(), startAt)
	if err != nil {
		return serviceError(err)
	}
	location(c, "/times", t.ID)
	return c.JSON(http.StatusCreated, newTimeResponse(t))
}

// Delete handles DELETE /times/:id.
func (h *TimeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Available handles GET /times/available?date=YYYY-MM-DD&themeId=N.
func (h *TimeHandler) Available(c echo.Context) error {
	var q availableQuery
	if err := echo.QueryParamsBinder(c).
		String("date", &q.Date).
		Int64("themeId", &q.ThemeID).
		BindError(); err != nil {
		return errs.BadRequest("validation failed", errs.FieldError{Field: "themeId", Message: "must be an integer"})
	}
	if err := validation.Struct(&q); err != nil {
		return err
	}
	date, err := time.ParseInLocation(model.DateLayout, q.Date, h.loc)
	if err != nil {
		return errs.BadRequest("validation failed", errs.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}

	slots, err := h.svc.Available(c.Request().Context(), date, q.ThemeID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, mapSlice(slots, func(a model.AvailableTime) availableTimeResponse {
		return availableTimeResponse{ID: a.ID, StartAt: a.Clock(), AlreadyBooked: a.AlreadyBooked}
	}))
}
