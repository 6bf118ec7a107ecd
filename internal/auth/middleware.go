package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest returns the auth cookie value, or "" when absent.
func TokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// RequireToken rejects requests without a valid auth cookie.
func RequireToken(tokens TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := tokens.Validate(TokenFromRequest(r)); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
