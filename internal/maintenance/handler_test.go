package maintenance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fc-faces/internal/auth"
)

type stubCleaner struct {
	result    auth.CleanupResult
	err       error
	retention time.Duration
	batch     int
	calls     int
}

func (s *stubCleaner) CleanupStaleAuthData(_ context.Context, retention time.Duration, batchSize int) (auth.CleanupResult, error) {
	s.calls++
	s.retention = retention
	s.batch = batchSize
	return s.result, s.err
}

func request(method, bearer string) *http.Request {
	req := httptest.NewRequest(method, "/internal/maintenance/cleanup", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req
}

func TestCleanupHandler(t *testing.T) {
	cleaner := &stubCleaner{result: auth.CleanupResult{DeletedAttemptState: 2, DeletedIPLimits: 1}}
	h := NewCleanupHandler(cleaner, nil, "cron", 30*24*time.Hour, 250)

	rec := httptest.NewRecorder()
	h.Handle(rec, request(http.MethodPost, "cron"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","result":{"deleted_attempt_state":2,"deleted_ip_limits":1}}`, rec.Body.String())
	assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	assert.Equal(t, 250, cleaner.batch)
}

func TestCleanupHandler_Guards(t *testing.T) {
	cleaner := &stubCleaner{}

	rec := httptest.NewRecorder()
	NewCleanupHandler(cleaner, nil, "", 0, 0).Handle(rec, request(http.MethodGet, "cron"))
	assert.Equal(t, http.StatusNotFound, rec.Code, "disabled without a secret")

	h := NewCleanupHandler(cleaner, nil, "cron", 0, 0)

	rec = httptest.NewRecorder()
	h.Handle(rec, request(http.MethodGet, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, request(http.MethodGet, ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Handle(rec, request(http.MethodDelete, "cron"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Zero(t, cleaner.calls)
}

func TestCleanupHandler_Failure(t *testing.T) {
	h := NewCleanupHandler(&stubCleaner{err: errors.New("db down")}, nil, "cron", 0, 0)

	rec := httptest.NewRecorder()
	h.Handle(rec, request(http.MethodGet, "cron"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"cleanup failed"}`, rec.Body.String())
}
