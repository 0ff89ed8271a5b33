package events

import (
	"sync"
	"testing"
	"time"
)

// testSubscriber копит полученные события
type testSubscriber struct {
	mu     sync.Mutex
	name   string
	types  []EventType
	events []Event
}

func (s *testSubscriber) GetName() string                  { return s.name }
func (s *testSubscriber) GetSubscribedEvents() []EventType { return s.types }

func (s *testSubscriber) HandleEvent(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *testSubscriber) received() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestBusDelivery(t *testing.T) {
	bus := NewBus(Config{BufferSize: 16, WorkerCount: 2})
	bus.Start()
	defer bus.Stop()

	sub := &testSubscriber{name: "test", types: []EventType{StocksUpdated}}
	bus.Subscribe(StocksUpdated, sub)

	bus.Publish(StocksUpdated, "payload")

	waitFor(t, func() bool { return len(sub.received()) == 1 })

	event := sub.received()[0]
	if event.Type != StocksUpdated {
		t.Errorf("unexpected event type: %s", event.Type)
	}
	if event.ID == "" {
		t.Error("expected generated event id")
	}
	if event.Data != "payload" {
		t.Errorf("unexpected payload: %v", event.Data)
	}
}

func TestBusIgnoresUndeclaredSubscription(t *testing.T) {
	bus := NewBus(Config{BufferSize: 16, WorkerCount: 1})
	bus.Start()
	defer bus.Stop()

	// Подписчик декларирует только StocksUpdated
	sub := &testSubscriber{name: "narrow", types: []EventType{StocksUpdated}}
	bus.Subscribe(SimulationStarted, sub)

	bus.Publish(SimulationStarted, nil)
	time.Sleep(50 * time.Millisecond)

	if len(sub.received()) != 0 {
		t.Errorf("expected no events, got %d", len(sub.received()))
	}
}

func TestBusStopIdempotent(t *testing.T) {
	bus := NewBus()
	bus.Start()
	bus.Stop()
	bus.Stop()
}
