// internal/stocks/tick.go
package stocks

import (
	"context"
	"math"
	"math/rand"
	"time"

	"stock-sim-backend/pkg/logger"
)

// candleBand - коридор high/low новой свечи относительно закрытия предыдущей
const candleBand = 0.02

// Tick выполняет один шаг симуляции: для каждой акции рисуется новое
// случайное изменение цены, пересчитывается стоимость, дописывается
// история и обновляется дневная свеча. После мутации снапшот уходит
// в хранилище. Возвращает количество обновленных акций.
func (m *Manager) Tick(ctx context.Context, rng *rand.Rand, now time.Time) int {
	m.mu.Lock()

	updated := 0
	for _, stock := range m.stocks {
		// Защита от битых данных: акция без свечей пропускается,
		// остальных тик не затрагивает
		if len(stock.Candles) == 0 {
			logger.Warn("⚠️ Акция %s без свечей, пропускаем на этом тике", stock.Ticker)
			continue
		}

		// Случайное изменение цены на 1-2% в любую сторону
		percent := 1 + rng.Float64()
		delta := stock.Price * percent / 100
		if rng.Float64() < 0.5 {
			delta = -delta
		}

		stock.Price = applyChange(stock.Price, delta)
		stock.Value = stock.Price * stock.Quantity

		// История цены, не больше лимита (FIFO)
		stock.PriceHistory = append(stock.PriceHistory, PricePoint{
			Timestamp: now,
			Price:     stock.Price,
		})
		if len(stock.PriceHistory) > m.historyLimit {
			stock.PriceHistory = stock.PriceHistory[len(stock.PriceHistory)-m.historyLimit:]
		}

		m.advanceCandle(stock, now)
		updated++
	}

	m.mu.Unlock()

	m.Persist(ctx)
	return updated
}

// applyChange применяет изменение цены. Если результат ушел бы в минус,
// изменение отбрасывается и цена падает до половины прежней: это
// восстановление от пола, а не жесткий клэмп в ноль.
func applyChange(price, delta float64) float64 {
	next := price + delta
	if next < 0 {
		next = price / 2
	}
	return round2(next)
}

// advanceCandle продвигает дневную свечу акции под новую цену.
// Свеча текущего дня дописывается, для нового дня открывается новая
// от закрытия предыдущей. high/low удерживаются в коридоре ±2% от
// закрытия предыдущей свечи, но OHLC-инвариант всегда в приоритете:
// high >= max(open, close), low <= min(open, close).
func (m *Manager) advanceCandle(stock *Stock, now time.Time) {
	last := &stock.Candles[len(stock.Candles)-1]

	if sameDay(last.Time, now) {
		last.Close = stock.Price
		clampCandle(last)
		return
	}

	prevClose := last.Close
	candle := Candle{
		Time:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		Open:  prevClose,
		Close: stock.Price,
		High:  round2(prevClose * (1 + candleBand)),
		Low:   round2(prevClose * (1 - candleBand)),
	}
	clampCandle(&candle)

	stock.Candles = append(stock.Candles, candle)
	if len(stock.Candles) > m.candleLimit {
		stock.Candles = stock.Candles[len(stock.Candles)-m.candleLimit:]
	}
}

// clampCandle приводит свечу к OHLC-инварианту
func clampCandle(c *Candle) {
	c.High = round2(math.Max(c.High, math.Max(c.Open, c.Close)))
	c.Low = round2(math.Min(c.Low, math.Min(c.Open, c.Close)))
	if c.Low < 0 {
		c.Low = 0
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
