package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewLoggerFromZap(zap.New(core)), logs
}

func TestLogger_WritesLevelsAndFields(t *testing.T) {
	logger, logs := newObservedLogger()

	logger.Info("server_start", map[string]any{"addr": ":8080"})
	logger.Warn("invalid_image_path", map[string]any{"path": "../etc"})
	logger.Error("boom", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, ":8080", entries[0].ContextMap()["addr"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "invalid_image_path", entries[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestLogger_NilIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("x", map[string]any{"a": 1})
		logger.Warn("x", nil)
		_ = logger.Sync()
	})
}

func TestRequestLoggingMiddleware_SetsRequestIDAndStatus(t *testing.T) {
	logger, logs := newObservedLogger()
	handler := RequestLoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Equal(t, "10.0.0.1", fields["ip"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), fields["request_id"])
}

func TestRequestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	handler := RequestLoggingMiddleware(nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecoverMiddleware_Returns500(t *testing.T) {
	logger, logs := newObservedLogger()
	handler := RecoverMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/roster", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic_recovered").Len())
}
