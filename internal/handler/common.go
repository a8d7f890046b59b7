// Package handler maps HTTP requests onto the services. Handlers bind and
// validate input, call one service method and return either a response or an
// *errs.HTTPError for the global error handler to render.
package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/roomescape/internal/errs"
	"github.com/iliyamo/roomescape/internal/service"
	"github.com/iliyamo/roomescape/internal/utils"
)

var sentinelStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrTimeNotFound, http.StatusNotFound},
	{service.ErrThemeNotFound, http.StatusNotFound},
	{service.ErrReservationNotFound, http.StatusNotFound},
	{service.ErrDuplicateEmail, http.StatusConflict},
	{service.ErrDuplicateTime, http.StatusConflict},
	{service.ErrTimeInUse, http.StatusConflict},
	{service.ErrDuplicateTheme, http.StatusConflict},
	{service.ErrThemeInUse, http.StatusConflict},
	{service.ErrDuplicateReservation, http.StatusConflict},
}

// serviceError translates service sentinels into HTTP errors carrying the
// sentinel's own message, so wrapped causes never reach clients. Anything
// unrecognised is passed through and ends up as a 500.
func serviceError(err error) error {
	switch {
	case errors.Is(err, service.ErrPastDate):
		return errs.BadRequest(service.ErrPastDate.Error(),
			errs.FieldError{Field: "date", Message: "must not be in the past"})
	case errors.Is(err, service.ErrPastTime):
		return errs.BadRequest(service.ErrPastTime.Error(),
			errs.FieldError{Field: "timeId", Message: "must start after the current time"})
	case errors.Is(err, service.ErrNameRequired):
		return errs.BadRequest("validation failed",
			errs.FieldError{Field: "name", Message: "is required"})
	case errors.Is(err, utils.ErrPasswordTooLong):
		// max=72 on the DTO counts characters; bcrypt's limit is in bytes.
		return errs.BadRequest("validation failed",
			errs.FieldError{Field: "password", Message: "must not exceed 72 bytes"})
	}
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return errs.New(s.status, s.err.Error())
		}
	}
	return err
}

// pathID reads the positive integer path parameter "id".
func pathID(c echo.Context) (int64, error) {
	var id int64
	if err := echo.PathParamsBinder(c).MustInt64("id", &id).BindError(); err != nil || id <= 0 {
		return 0, errs.BadRequest("invalid id",
			errs.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

// location formats the Location header of a created resource.
func location(c echo.Context, base string, id int64) {
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("%s/%d", base, id))
}
