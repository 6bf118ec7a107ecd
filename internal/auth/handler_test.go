package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie set", CookieName)
	return nil
}

func TestHandler_Auth(t *testing.T) {
	h := NewHandler(nil, NewStaticIssuer("", 0), true, nil)

	rec := httptest.NewRecorder()
	h.Auth(rec, httptest.NewRequest(http.MethodPost, "/api/auth", strings.NewReader(`{"authenticated":true}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	c := authCookie(t, rec)
	assert.Equal(t, DefaultStaticToken, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
}

func TestHandler_AuthRejects(t *testing.T) {
	h := NewHandler(nil, NewStaticIssuer("", 0), false, nil)

	tests := []struct {
		name   string
		method string
		body   string
		status int
		error  string
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed, "Method not allowed"},
		{"false", http.MethodPost, `{"authenticated":false}`, http.StatusBadRequest, "Invalid request"},
		{"missing", http.MethodPost, `{}`, http.StatusBadRequest, "Invalid request"},
		{"zero", http.MethodPost, `{"authenticated":0}`, http.StatusBadRequest, "Invalid request"},
		{"empty string", http.MethodPost, `{"authenticated":""}`, http.StatusBadRequest, "Invalid request"},
		{"null", http.MethodPost, `{"authenticated":null}`, http.StatusBadRequest, "Invalid request"},
		{"malformed", http.MethodPost, `{`, http.StatusBadRequest, "Invalid request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Auth(rec, httptest.NewRequest(tt.method, "/api/auth", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.error+`"}`, rec.Body.String())
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.True(t, truthy("yes"))
	assert.True(t, truthy(float64(1)))
	assert.True(t, truthy(map[string]any{}))
	assert.True(t, truthy([]any{}))
	assert.False(t, truthy(float64(0)))
	assert.False(t, truthy(nil))
}

func newLoginHandler(t *testing.T) (*Handler, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t)
	issuer, err := NewJWTIssuer("s3cret", 0)
	require.NoError(t, err)
	return NewHandler(f.service, issuer, false, nil), f
}

func postLogin(h *Handler, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(loginRequest{Password: password})
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(string(body))))
	return rec
}

func TestHandler_LoginFlow(t *testing.T) {
	h, f := newLoginHandler(t)

	rec := postLogin(h, "nope")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid password","remainingAttempts":4}`, rec.Body.String())

	rec = postLogin(h, "correct horse")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, h.tokens.Validate(authCookie(t, rec).Value))

	for i := 0; i < 4; i++ {
		postLogin(h, "nope")
	}
	rec = postLogin(h, "nope")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "900", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many failed attempts","retryAfterMinutes":15}`, rec.Body.String())

	f.clock.Advance(14*time.Minute + 30*time.Second)
	rec = postLogin(h, "correct horse")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too many failed attempts","retryAfterMinutes":1}`, rec.Body.String())
}

func TestHandler_LoginBadBodyAndUnavailable(t *testing.T) {
	h, _ := newLoginHandler(t)
	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"password":"x","extra":1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unavailable := NewHandler(nil, NewStaticIssuer("", 0), false, nil)
	rec = httptest.NewRecorder()
	unavailable.Login(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"password":"x"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Logout(t *testing.T) {
	h := NewHandler(nil, NewStaticIssuer("", 0), false, nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := authCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestRequireToken(t *testing.T) {
	issuer := NewStaticIssuer("tok", 0)
	protected := RequireToken(issuer, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/roster", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/api/roster", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "tok"})
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRemoteChecker_AgainstLoginHandler(t *testing.T) {
	h, _ := newLoginHandler(t)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", h.Login)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	checker, err := NewRemoteChecker(srv.URL+"/", time.Second)
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := checker.Check(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = checker.Check(ctx, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	u, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	cookies := checker.Client().Jar.Cookies(u.URL)
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	for i := 0; i < 5; i++ {
		_, err = checker.Check(ctx, "nope")
	}
	locked, isLocked := IsLockedOut(err)
	require.True(t, isLocked, "got %v", err)
	assert.Equal(t, 15*time.Minute, locked.Remaining)
}

func TestRemoteChecker_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	checker, err := NewRemoteChecker(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrNetworkFailure)

	srv.Close()
	_, err = checker.Check(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrNetworkFailure)

	_, err = NewRemoteChecker(" ", time.Second)
	assert.Error(t, err)
}

func TestDigestChecker(t *testing.T) {
	checker := newDigest(t, "pw")

	ok, err := checker.Check(context.Background(), "pw")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = checker.Check(context.Background(), "PW")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = NewDigestChecker("plaintext")
	assert.Error(t, err)

	_, err = HashPassword("", 0)
	assert.Error(t, err)
}
