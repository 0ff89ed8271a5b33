// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"stock-sim-backend/internal/config"
	"stock-sim-backend/internal/stocks"
	"stock-sim-backend/internal/users"
	"stock-sim-backend/pkg/logger"
)

// Server - HTTP слой поверх движка симуляции и сервиса пользователей
type Server struct {
	config    *config.Config
	manager   *stocks.Manager
	simulator *stocks.Simulator
	auth      *users.Service // nil, если база пользователей выключена
	hub       *Hub

	httpServer *http.Server
}

// New создает HTTP сервер. auth может быть nil - тогда пользовательские
// маршруты отвечают 503.
func New(cfg *config.Config, manager *stocks.Manager, simulator *stocks.Simulator, auth *users.Service, hub *Hub) *Server {
	s := &Server{
		config:    cfg,
		manager:   manager,
		simulator: simulator,
		auth:      auth,
		hub:       hub,
	}

	mux := http.NewServeMux()

	// Акции
	mux.HandleFunc("GET /api/v1/stock/popular", s.handlePopular)
	mux.HandleFunc("GET /api/v1/stock/specific/{symbol}", s.handleSpecific)
	mux.HandleFunc("GET /api/v1/stock/history/{id}", s.handleHistory)
	mux.HandleFunc("GET /api/v1/stock/portfolio", s.handlePortfolio)

	// Управление симуляцией
	mux.HandleFunc("POST /api/v1/simulation/start", s.handleSimulationStart)
	mux.HandleFunc("POST /api/v1/simulation/stop", s.handleSimulationStop)

	// Пользователи
	mux.HandleFunc("POST /api/v1/user/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/user/login", s.handleLogin)
	mux.HandleFunc("GET /api/v1/user/profile", s.withAuth(s.handleProfile))

	// Live-обновления для SPA
	if hub != nil {
		mux.HandleFunc("GET /api/v1/stock/ws", hub.handleWS)
	}

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.HttpPort,
		Handler:      s.corsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return s
}

// Start запускает HTTP сервер (блокирует до остановки)
func (s *Server) Start() error {
	logger.Info("🚀 HTTP сервер запущен на http://localhost:%s", s.config.HttpPort)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает HTTP сервер с graceful shutdown
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("🛑 Остановка HTTP сервера")
	return s.httpServer.Shutdown(ctx)
}

// writeJSON пишет JSON-ответ с заданным статусом
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("❌ Не удалось записать JSON-ответ: %v", err)
	}
}

// writeError пишет JSON-ответ вида {"error": ...}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
