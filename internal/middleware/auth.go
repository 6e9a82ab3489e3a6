package middleware

import (
	"net/http"
)

// TokenVerifier reports whether a request carries a valid identity
// assertion.
type TokenVerifier interface {
	Verify(r *http.Request) bool
}

// RequireAccess gates mutating requests behind the token verifier. Reads
// pass through untouched: GET access is intentionally public. A failed check
// short-circuits with 401 before any handler runs.
func RequireAccess(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && !verifier.Verify(r) {
				respondError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
