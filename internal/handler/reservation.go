package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/middleware"
	"github.com/iliyamo/roomescape/internal/model"
	"github.com/iliyamo/roomescape/internal/service"
	"github.com/iliyamo/roomescape/internal/validation"
)

// ReservationService is what ReservationHandler needs from the reservation
// service.
type ReservationService interface {
	List(ctx context.Context) ([]model.Reservation, error)
	Create(ctx context.Context, in service.CreateReservation) (model.Reservation, error)
	Delete(ctx context.Context, id int64, member *model.LoginMember) error
}

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	svc ReservationService
	loc *time.Location
}

func NewReservationHandler(svc ReservationService, loc *time.Location) *ReservationHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReservationHandler{svc: svc, loc: loc}
}

// List handles GET /reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	rs, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mapSlice(rs, newReservationResponse))
}

// Create handles POST /reservations. A blank name falls back to the
// logged-in member's name when the token cookie is valid.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationRequest
	if err := validation.BindAndValidate(c, &req); err != nil {
		return err
	}
	date, err := time.ParseInLocation(model.DateLayout, req.Date, h.loc)
	if err != nil {
		return errs.BadRequest("validation failed", errs.FieldError{Field: "date", Message: "must be a date in YYYY-MM-DD format"})
	}

	r, err := h.svc.Create(c.Request().Context(), service.CreateReservation{
		Name:    req.Name,
		Date:    date,
		TimeID:  req.TimeID,
		ThemeID: req.ThemeID,
		Member:  middleware.GetLoginMember(c),
	})
	if err != nil {
		return serviceError(err)
	}
	location(c, "/reservations", r.ID)
	return c.JSON(http.StatusCreated, newReservationResponse(r))
}

// Delete handles DELETE /reservations/:id.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, middleware.GetLoginMember(c)); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
