package auth

import (
	"net/http"

	"go.uber.org/zap"
)

// TokenValidator — интерфейс проверки входящих токенов.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*Claims, error)
}

// NewMiddleware закрывает API бирер-токеном. Скоуп "analyze" обязателен.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !claims.Scopes["analyze"] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
