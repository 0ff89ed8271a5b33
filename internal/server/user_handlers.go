// internal/server/user_handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"stock-sim-backend/internal/users"
	"stock-sim-backend/pkg/logger"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignup регистрирует пользователя
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "user service is not available")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	token, err := s.auth.Signup(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
			return
		}
		logger.Error("❌ Ошибка регистрации: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"token":   token,
	})
}

// handleLogin проверяет учетные данные и выдает токен
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "user service is not available")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		logger.Error("❌ Ошибка входа: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token":   token,
		"message": "Login successful",
	})
}

// handleProfile отдает профиль аутентифицированного пользователя
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDKey).(int)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := s.auth.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
			return
		}
		logger.Error("❌ Ошибка получения профиля: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
