package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	deliverycontext "authcore/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRequestID(t *testing.T, header string) (string, string, *bytes.Buffer) {
	t.Helper()

	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	handler := NewRequestIDMiddleware(logger).Process(func(c echo.Context) error {
		seen = deliverycontext.GetRequestIDFromContext(c.Request().Context())
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil).Info("inside")

		return nil
	})
	require.NoError(t, handler(c))

	return seen, rec.Header().Get(deliverycontext.HeaderXRequestID), buf
}

func TestRequestIDMiddleware_ReusesClientID(t *testing.T) {
	seen, header, buf := runRequestID(t, "abc-123")

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", header)
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
}

func TestRequestIDMiddleware_GeneratesWhenMissingOrMalformed(t *testing.T) {
	for _, header := range []string{"", "bad id\nwith newline", strings.Repeat("x", maxRequestIDLength+1)} {
		seen, echoed, _ := runRequestID(t, header)

		assert.NotEmpty(t, seen)
		assert.NotEqual(t, header, seen)
		assert.Equal(t, seen, echoed)
	}
}
