package stocks

import (
	"context"
	"strings"
	"testing"
	"time"

	"stock-sim-backend/internal/storage"
)

// addWithCandle добавляет акцию с одной заранее известной свечой
func addWithCandle(m *Manager, name, ticker string, price, open float64) *Stock {
	return m.Add(context.Background(), &Stock{
		Name:     name,
		Ticker:   ticker,
		Price:    price,
		Quantity: 1,
		Candles: []Candle{{
			Time:  time.Now(),
			Open:  open,
			High:  open,
			Low:   open,
			Close: open,
		}},
	})
}

func TestPriceChangePercent(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), 100, 60)
	stock := addWithCandle(m, "Foo Corp", "FOO", 110, 100)

	change, ok := m.PriceChangePercent(stock.ID)
	if !ok {
		t.Fatal("expected change to be computed")
	}
	if change != 10 {
		t.Errorf("expected +10%%, got %f", change)
	}
}

func TestPriceChangePercentMissing(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), 100, 60)

	if _, ok := m.PriceChangePercent("nope"); ok {
		t.Error("expected no result for unknown id")
	}
}

func TestFormatted(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), 100, 60)
	addWithCandle(m, "Up Corp", "UP", 110, 100)
	addWithCandle(m, "Down Corp", "DOWN", 90, 100)

	formatted := m.Formatted()
	if len(formatted) != 2 {
		t.Fatalf("expected 2 formatted stocks, got %d", len(formatted))
	}

	up := formatted[0]
	if up.Change != "+10.00%" {
		t.Errorf("expected change +10.00%%, got %s", up.Change)
	}
	if up.ChangeValue != 10 {
		t.Errorf("expected change value 10, got %f", up.ChangeValue)
	}

	down := formatted[1]
	if !strings.HasPrefix(down.Change, "-") {
		t.Errorf("expected negative change, got %s", down.Change)
	}
	if down.Change != "-10.00%" {
		t.Errorf("expected change -10.00%%, got %s", down.Change)
	}

	if up.Symbol != "UP" || up.Name != "Up Corp" {
		t.Errorf("unexpected symbol/name: %s/%s", up.Symbol, up.Name)
	}
	if up.Value != 110 {
		t.Errorf("expected value 110, got %f", up.Value)
	}
}

func TestCandleSeries(t *testing.T) {
	m := NewManager(storage.NewMemoryStorage(), 100, 60)
	m.Seed(context.Background())

	candles := m.CandleSeries("tcs")
	if len(candles) == 0 {
		t.Fatal("expected candles for TCS (case-insensitive)")
	}

	if unknown := m.CandleSeries("NOPE"); len(unknown) != 0 {
		t.Errorf("expected empty series for unknown ticker, got %d", len(unknown))
	}
}
