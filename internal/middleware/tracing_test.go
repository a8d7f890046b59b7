package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/iliyamo/roomescape/internal/errs"
)

func TestTracing(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	e := newEcho()
	e.Use(Tracing())
	e.GET("/times/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/boom", func(echo.Context) error { return errs.Internal() })

	ok := serve(e, http.MethodGet, "/times/3", "")
	assert.Len(t, ok.Header().Get(TraceIDHeader), 32)

	serve(e, http.MethodGet, "/boom", "")

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /times/:id", spans[0].Name())
	assert.Equal(t, ok.Header().Get(TraceIDHeader), spans[0].SpanContext().TraceID().String())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestTracing_NoProviderNoHeader(t *testing.T) {
	e := newEcho()
	e.Use(Tracing())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := serve(e, http.MethodGet, "/", "")
	assert.Empty(t, rec.Header().Get(TraceIDHeader))
}
