// internal/server/hub.go
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"stock-sim-backend/internal/events"
	"stock-sim-backend/pkg/logger"
)

const writeTimeout = 5 * time.Second

// wsMessage - сообщение, уходящее клиентам SPA
type wsMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub раздает снапшоты акций подключенным websocket-клиентам.
// Подписан на шину событий; доставка best-effort, медленный клиент
// отключается.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub создает websocket-хаб
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// GetName - имя подписчика для шины событий
func (h *Hub) GetName() string {
	return "websocket-hub"
}

// GetSubscribedEvents - типы событий, которые обрабатывает хаб
func (h *Hub) GetSubscribedEvents() []events.EventType {
	return []events.EventType{events.StocksUpdated}
}

// HandleEvent рассылает снапшот акций всем клиентам
func (h *Hub) HandleEvent(event events.Event) error {
	h.broadcast(wsMessage{
		Type: string(event.Type),
		Data: event.Data,
	})
	return nil
}

// handleWS апгрейдит запрос до websocket и держит соединение
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Warn("⚠️ Не удалось открыть websocket: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	logger.Info("🔌 Websocket-клиент подключен (всего %d)", total)

	// Читаем до закрытия: клиенты ничего не шлют, но так мы
	// узнаем о разрыве соединения
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.remove(conn, websocket.StatusNormalClosure)
}

// broadcast шлет сообщение всем клиентам
func (h *Hub) broadcast(msg wsMessage) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := wsjson.Write(ctx, conn, msg)
		cancel()

		if err != nil {
			logger.Debug("🔌 Отключаем недоступного websocket-клиента: %v", err)
			h.remove(conn, websocket.StatusPolicyViolation)
		}
	}
}

// remove закрывает соединение и убирает его из списка
func (h *Hub) remove(conn *websocket.Conn, code websocket.StatusCode) {
	h.mu.Lock()
	_, exists := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()

	if exists {
		conn.Close(code, "")
	}
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutdown")
	}
}
