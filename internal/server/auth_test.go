package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-sim-backend/internal/config"
	"stock-sim-backend/internal/stocks"
	"stock-sim-backend/internal/storage"
	"stock-sim-backend/internal/users"
)

// stubUserRepo - in-memory репозиторий пользователей для HTTP-тестов
type stubUserRepo struct {
	byEmail map[string]*users.User
	nextID  int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*users.User), nextID: 1}
}

func (r *stubUserRepo) Create(ctx context.Context, user *users.User) error {
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.nextID++
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, users.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(ctx context.Context, id int) (*users.User, error) {
	for _, user := range r.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func newAuthServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		HttpPort:    "0",
		CorsOrigins: []string{"*"},
	}

	manager := stocks.NewManager(storage.NewMemoryStorage(), 100, 60)
	manager.Seed(context.Background())

	simulator := stocks.NewSimulator(manager, time.Minute, nil)
	t.Cleanup(simulator.Stop)

	auth := users.NewService(newStubUserRepo(), "test-secret", time.Hour)
	return New(cfg, manager, simulator, auth, nil)
}

func postJSON(t *testing.T, s *Server, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestSignupLoginProfileFlow(t *testing.T) {
	s := newAuthServer(t)

	// Регистрация
	rec := postJSON(t, s, "/api/v1/user/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Повторная регистрация отклоняется
	rec = postJSON(t, s, "/api/v1/user/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate signup, got %d", rec.Code)
	}

	// Вход
	rec = postJSON(t, s, "/api/v1/user/login", map[string]string{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var loginBody struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &loginBody); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if loginBody.Token == "" {
		t.Fatal("expected token in login response")
	}

	// Профиль с токеном
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+loginBody.Token)
	profileRec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(profileRec, req)

	if profileRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", profileRec.Code, profileRec.Body.String())
	}

	var profileBody struct {
		User users.User `json:"user"`
	}
	if err := json.Unmarshal(profileRec.Body.Bytes(), &profileBody); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if profileBody.User.Username != "alice" {
		t.Errorf("expected username alice, got %s", profileBody.User.Username)
	}
}

func TestProfileWithoutToken(t *testing.T) {
	s := newAuthServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}

func TestProfileWithBadToken(t *testing.T) {
	s := newAuthServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid token, got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newAuthServer(t)

	rec := postJSON(t, s, "/api/v1/user/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
