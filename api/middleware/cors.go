package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS applies the allowed origin policy. An empty list or "*" allows any
// origin without credentials.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	wildcard := len(origins) == 0
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			wildcard = true
		}
		allowed = append(allowed, origin)
	}
	if wildcard {
		allowed = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-Id", "Idempotency-Replayed"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	}).Handler
}
