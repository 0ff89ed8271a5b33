// internal/events/publisher.go
package events

import "stock-sim-backend/internal/stocks"

// SnapshotPublisher адаптирует шину под интерфейс публикации
// снапшотов, которого ждет симулятор
type SnapshotPublisher struct {
	bus *Bus
}

// NewSnapshotPublisher создает адаптер над шиной
func NewSnapshotPublisher(bus *Bus) *SnapshotPublisher {
	return &SnapshotPublisher{bus: bus}
}

// PublishStocksUpdated публикует снапшот акций после тика
func (p *SnapshotPublisher) PublishStocksUpdated(formatted []stocks.FormattedStock) {
	p.bus.Publish(StocksUpdated, formatted)
}
