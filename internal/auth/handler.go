package auth

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"fc-faces/internal/observability"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service      *Service
	tokens       TokenIssuer
	secureCookie bool
	logger       *observability.Logger
}

// NewHandler wires the auth endpoints. service may be nil when no password
// digest is configured; /api/login then answers 503.
func NewHandler(service *Service, tokens TokenIssuer, secureCookie bool, logger *observability.Logger) *Handler {
	return &Handler{
		service:      service,
		tokens:       tokens,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type invalidCredentialsResponse struct {
	Error             string `json:"error"`
	RemainingAttempts int    `json:"remainingAttempts"`
}

type lockedOutResponse struct {
	Error             string `json:"error"`
	RetryAfterMinutes int    `json:"retryAfterMinutes"`
}

// Auth issues the auth cookie to a client that has already passed the
// password gate.
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !truthy(body["authenticated"]) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if !h.setAuthCookie(w) {
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Login verifies the password server-side and sets the auth cookie on
// success.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "Login unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	var body loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	err := h.service.Submit(r.Context(), body.Password)
	if err == nil {
		if !h.setAuthCookie(w) {
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
		return
	}

	var invalid InvalidCredentialsError
	if errors.As(err, &invalid) {
		writeJSON(w, http.StatusUnauthorized, invalidCredentialsResponse{
			Error:             "Invalid password",
			RemainingAttempts: invalid.Remaining,
		})
		return
	}
	if locked, ok := IsLockedOut(err); ok {
		h.logger.Warn("login_locked", map[string]any{
			"until": locked.Until.Format(time.RFC3339),
			"ip":    clientIP(r),
		})
		retryAfter := int(math.Ceil(locked.Remaining.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, lockedOutResponse{
			Error:             "Too many failed attempts",
			RetryAfterMinutes: locked.RetryAfterMinutes(),
		})
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	observability.CaptureError("auth", err)
	h.logger.Error("login_failed", map[string]any{"error": err.Error()})
	writeError(w, http.StatusInternalServerError, "Failed to login")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) setAuthCookie(w http.ResponseWriter) bool {
	token, expiresAt, err := h.tokens.Issue()
	if err != nil {
		observability.CaptureError("auth", err)
		h.logger.Error("issue_token_failed", map[string]any{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(DefaultTokenTTL.Seconds()),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return true
}

// truthy follows JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case string:
		return t != ""
	default:
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
