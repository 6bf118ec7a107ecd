package images

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"fc-faces/internal/auth"
	"fc-faces/internal/observability"
)

// PathPrefix is the URL prefix the handler serves under.
const PathPrefix = "/api/images/"

type Handler struct {
	resolver *Resolver
	logger   *observability.Logger
}

func NewHandler(resolver *Resolver, logger *observability.Logger) *Handler {
	return &Handler{resolver: resolver, logger: logger}
}

// RequestPath extracts the requested image path from the URL. Serverless
// catch-all routes deliver it as repeated "path" query values instead.
func RequestPath(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, PathPrefix) {
		return strings.TrimPrefix(r.URL.Path, PathPrefix)
	}
	if parts, ok := r.URL.Query()["path"]; ok {
		return strings.Join(parts, "/")
	}
	return ""
}

func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	requestPath := RequestPath(r)
	img, err := h.resolver.Resolve(r.Context(), auth.TokenFromRequest(r), requestPath)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	case errors.Is(err, ErrInvalidPath):
		h.logger.Warn("invalid_image_path", map[string]any{
			"path": strconv.Quote(requestPath),
			"ip":   r.Header.Get("X-Forwarded-For"),
		})
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	default:
		h.logger.Info("image_not_found", map[string]any{
			"path":  requestPath,
			"error": err.Error(),
		})
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(img.Data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
