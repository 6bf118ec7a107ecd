package maintenance

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"fc-faces/internal/auth"
	"fc-faces/internal/observability"
)

// StaleStateCleaner deletes attempt state nobody has touched within the
// retention window.
type StaleStateCleaner interface {
	CleanupStaleAuthData(ctx context.Context, retention time.Duration, batchSize int) (auth.CleanupResult, error)
}

type CleanupHandler struct {
	cleaner    StaleStateCleaner
	logger     *observability.Logger
	cronSecret string
	retention  time.Duration
	batchSize  int
}

func NewCleanupHandler(
	cleaner StaleStateCleaner,
	logger *observability.Logger,
	cronSecret string,
	retention time.Duration,
	batchSize int,
) *CleanupHandler {
	return &CleanupHandler{
		cleaner:    cleaner,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		retention:  retention,
		batchSize:  batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, secret, _ := strings.Cut(authHeader, " ")
	if !strings.EqualFold(scheme, "Bearer") ||
		subtle.ConstantTimeCompare([]byte(strings.TrimSpace(secret)), []byte(h.cronSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	result, err := h.cleaner.CleanupStaleAuthData(r.Context(), h.retention, h.batchSize)
	if err != nil {
		observability.CaptureError("maintenance", err)
		h.logger.Error("auth_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("auth_cleanup_completed", map[string]any{
		"deleted_attempt_state": result.DeletedAttemptState,
		"deleted_ip_limits":     result.DeletedIPLimits,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
