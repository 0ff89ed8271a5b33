// internal/stocks/types.go
package stocks

import (
	"errors"
	"time"
)

// ErrStockNotFound возвращается при поиске несуществующей акции
var ErrStockNotFound = errors.New("stock not found")

// Candle - одна OHLC свеча за день
type Candle struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

// PricePoint - одна точка истории цены
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// Stock - отслеживаемая акция
type Stock struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Ticker       string       `json:"ticker"`
	Quantity     float64      `json:"quantity"`
	Price        float64      `json:"price"`
	Value        float64      `json:"value"` // всегда Price * Quantity
	PriceHistory []PricePoint `json:"priceHistory"`
	Candles      []Candle     `json:"candlestick"`
}

// FormattedStock - представление акции для фронтенда
type FormattedStock struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Change      string  `json:"change"` // "+1.25%" / "-0.80%"
	ChangeValue float64 `json:"changeValue"`
	Quantity    float64 `json:"quantity"`
	Value       float64 `json:"value"`
}

// StockUpdate - частичное обновление акции. nil-поля не трогаются.
type StockUpdate struct {
	Name     *string
	Ticker   *string
	Quantity *float64
	Price    *float64
}

// UpdatePublisher получает форматированный снапшот после каждого тика.
// Реализуется шиной событий; симулятор о ней ничего не знает.
type UpdatePublisher interface {
	PublishStocksUpdated(stocks []FormattedStock)
}

// clone возвращает независимую копию акции
func (s *Stock) clone() *Stock {
	c := *s
	c.PriceHistory = append([]PricePoint(nil), s.PriceHistory...)
	c.Candles = append([]Candle(nil), s.Candles...)
	return &c
}
