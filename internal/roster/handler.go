package roster

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type Handler struct {
	library  *Library
	imageURL func(string) string
}

// NewHandler serves the derived roster. imageURL rewrites each profile's
// image path into the URL clients should fetch; nil leaves paths untouched.
func NewHandler(library *Library, imageURL func(string) string) *Handler {
	return &Handler{library: library, imageURL: imageURL}
}

type listResponse struct {
	Profiles         []Profile `json:"profiles"`
	Total            int       `json:"total"`
	ShortlistEnabled bool      `json:"shortlistEnabled"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	enabled := false
	if raw := strings.TrimSpace(r.URL.Query().Get("shortlist")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid shortlist flag")
			return
		}
		enabled = parsed
	}

	profiles := h.library.Roster(enabled)
	if h.imageURL != nil {
		for i := range profiles {
			profiles[i].ImagePath = h.imageURL(profiles[i].ImagePath)
		}
	}

	writeJSON(w, http.StatusOK, listResponse{
		Profiles:         profiles,
		Total:            len(profiles),
		ShortlistEnabled: enabled,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
