package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLogger_Level(t *testing.T) {
	l := InitLogger("development", "warn")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l = InitLogger("production", "bogus")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.Same(t, l, GetLogger())
}

func TestMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	handlers := map[string]echo.HandlerFunc{
		"/ok": func(c echo.Context) error {
			assert.NotNil(t, FromContext(c))
			return c.NoContent(http.StatusNoContent)
		},
		"/boom": func(c echo.Context) error { return errors.New("boom") },
	}

	mw := Middleware(zap.New(core))
	for _, path := range []string{"/ok", "/boom"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(echo.HeaderXRequestID, "req-1")
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		require.NoError(t, mw(handlers[path])(c))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "http request completed", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.EqualValues(t, http.StatusNoContent, entries[0].ContextMap()["status"])
	assert.Equal(t, "http request failed", entries[1].Message)
	assert.EqualValues(t, http.StatusInternalServerError, entries[1].ContextMap()["status"])
}

func TestFromContext_Fallback(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, FromContext(c))
}
