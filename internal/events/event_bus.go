// internal/events/event_bus.go
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-sim-backend/pkg/logger"
)

// EventType - тип события
type EventType string

const (
	// StocksUpdated публикуется после каждого тика симуляции
	StocksUpdated EventType = "stocks.updated"
	// SimulationStarted / SimulationStopped - смена состояния часов
	SimulationStarted EventType = "simulation.started"
	SimulationStopped EventType = "simulation.stopped"
)

// Event - одно событие шины
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// Subscriber - подписчик шины событий
type Subscriber interface {
	GetName() string
	GetSubscribedEvents() []EventType
	HandleEvent(event Event) error
}

// Config - конфигурация шины
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = Config{
	BufferSize:  256,
	WorkerCount: 4,
}

// Bus - шина событий: буферизованный канал плюс пул обработчиков.
// Доставка fire-and-forget: при переполнении буфера событие
// отбрасывается, подтверждений от подписчиков нет.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	buffer      chan Event
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	config      Config
	dropped     int64
}

// NewBus создает шину событий
func NewBus(config ...Config) *Bus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	return &Bus{
		subscribers: make(map[EventType][]Subscriber),
		buffer:      make(chan Event, cfg.BufferSize),
		stopChan:    make(chan struct{}),
		config:      cfg,
	}
}

// Start запускает обработчиков событий
func (b *Bus) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}

	logger.Info("🚀 Шина событий запущена (%d обработчиков)", b.config.WorkerCount)
}

// Stop останавливает шину и дожидается обработчиков
func (b *Bus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopChan)
	b.wg.Wait()

	logger.Info("🛑 Шина событий остановлена")
}

// Subscribe подписывает обработчик на тип события
func (b *Bus) Subscribe(eventType EventType, subscriber Subscriber) {
	// Подписчик обязан декларировать этот тип события
	found := false
	for _, et := range subscriber.GetSubscribedEvents() {
		if et == eventType {
			found = true
			break
		}
	}
	if !found {
		logger.Warn("⚠️ Подписчик %s не декларирует событие %s, подписка пропущена",
			subscriber.GetName(), eventType)
		return
	}

	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
	b.mu.Unlock()

	logger.Debug("✅ %s подписался на %s", subscriber.GetName(), eventType)
}

// Publish публикует событие. Не блокирует: если буфер полон,
// событие отбрасывается.
func (b *Bus) Publish(eventType EventType, data interface{}) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	select {
	case b.buffer <- event:
	default:
		b.mu.Lock()
		b.dropped++
		dropped := b.dropped
		b.mu.Unlock()
		logger.Warn("⚠️ Буфер шины переполнен, событие %s отброшено (всего %d)", eventType, dropped)
	}
}

// worker обрабатывает события из буфера
func (b *Bus) worker(id int) {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.buffer:
			b.dispatch(event)
		case <-b.stopChan:
			return
		}
	}
}

// dispatch доставляет событие всем подписчикам его типа
func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	subs := append([]Subscriber(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.HandleEvent(event); err != nil {
			logger.Error("❌ Подписчик %s не обработал %s: %v",
				sub.GetName(), event.Type, err)
		}
	}
}
