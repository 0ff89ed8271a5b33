// internal/stocks/simulator.go
package stocks

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"stock-sim-backend/pkg/logger"
)

// Simulator - часы симуляции. Периодически продвигает цены всех акций
// реестра и рассылает снапшот подписчикам. Два состояния: запущен и
// остановлен. Повторный Start перевооружает таймер (дубликатов не
// бывает), Stop идемпотентен.
type Simulator struct {
	// lifeMu сериализует Start/Stop целиком: снятие старого таймера и
	// вооружение нового - одна неделимая операция. wg.Add и wg.Wait
	// вызываются только под этим мьютексом.
	lifeMu sync.Mutex

	mu       sync.Mutex
	manager  *Manager
	interval time.Duration
	pub      UpdatePublisher // может быть nil

	rng      *rand.Rand
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
	ticks    int64
}

// NewSimulator создает симулятор поверх реестра.
// pub может быть nil, тогда рассылка снапшотов не ведется.
func NewSimulator(manager *Manager, interval time.Duration, pub UpdatePublisher) *Simulator {
	return &Simulator{
		manager:  manager,
		interval: interval,
		pub:      pub,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start запускает симуляцию. Если она уже идет, старый таймер
// сначала снимается - активный тикер всегда ровно один.
func (s *Simulator) Start() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.stopLocked()

	s.mu.Lock()
	s.stopChan = make(chan struct{})
	s.running = true
	stopChan := s.stopChan
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(stopChan)

	logger.Info("🚀 Симуляция цен запущена (интервал %v)", s.interval)
}

// Stop останавливает симуляцию. Текущий тик не прерывается,
// повторный вызов безопасен.
func (s *Simulator) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.stopLocked() {
		logger.Info("🛑 Симуляция цен остановлена")
	}
}

// stopLocked снимает активный таймер и дожидается завершения цикла.
// Вызывается только под lifeMu. Возвращает true, если таймер был активен.
func (s *Simulator) stopLocked() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	return true
}

// Running сообщает, идет ли симуляция
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks возвращает число выполненных тиков
func (s *Simulator) Ticks() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Cleanup освобождает ресурсы симулятора
func (s *Simulator) Cleanup() {
	s.Stop()
}

// loop - основной цикл: тик за тиком до остановки.
// Тики строго последовательны, следующий не начнется, пока не
// завершится текущий.
func (s *Simulator) loop(stopChan chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-stopChan:
			return
		}
	}
}

// tick выполняет один шаг симуляции и рассылает снапшот
func (s *Simulator) tick() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated := s.manager.Tick(ctx, s.rng, start)

	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()

	logger.Tick(updated, s.manager.TotalValue(), time.Since(start))

	// Уведомление подписчиков: fire-and-forget, без гарантий доставки
	if s.pub != nil {
		s.pub.PublishStocksUpdated(s.manager.Formatted())
	}
}
