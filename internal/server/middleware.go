// internal/server/middleware.go
package server

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// userIDKey - ключ контекста с id аутентифицированного пользователя
const userIDKey contextKey = "userId"

// corsMiddleware разрешает кросс-доменные запросы от фронтенда
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	origins := strings.Join(s.config.CorsOrigins, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withAuth проверяет Bearer-токен и кладет userId в контекст запроса
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			writeError(w, http.StatusServiceUnavailable, "user service is not available")
			return
		}

		token := r.Header.Get("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "You are not logged in"})
			return
		}

		userID, err := s.auth.VerifyToken(token)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid request"})
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}
