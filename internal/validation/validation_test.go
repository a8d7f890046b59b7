package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/roomescape/internal/errs"
)

type sample struct {
	Name    string `json:"name" validate:"required"`
	Date    string `json:"date" validate:"required,date"`
	StartAt string `json:"startAt" validate:"omitempty,clock"`
	TimeID  int64  `json:"timeId" validate:"required,gt=0"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(&sample{Name: "brown", Date: "2030-01-02", StartAt: "10:00", TimeID: 1})
	assert.NoError(t, err)
}

func TestStruct_FieldDetails(t *testing.T) {
	err := Struct(&sample{Date: "2030/01/02", StartAt: "25:99"})
	require.Error(t, err)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)

	got := map[string]string{}
	for _, d := range httpErr.Details {
		got[d.Field] = d.Message
	}
	assert.Equal(t, "is required", got["name"])
	assert.Equal(t, "must be a date in YYYY-MM-DD format", got["date"])
	assert.Equal(t, "must be a time in HH:mm format", got["startAt"])
	assert.Equal(t, "is required", got["timeId"])
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var payload sample
	err := BindAndValidate(c, &payload)

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "invalid request body", httpErr.Message)
}

func TestBindAndValidate_OK(t *testing.T) {
	e := echo.New()
	body := `{"name":"brown","date":"2030-01-02","timeId":3}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var payload sample
	require.NoError(t, BindAndValidate(c, &payload))
	assert.Equal(t, int64(3), payload.TimeID)
}
