// internal/stocks/candlestick.go
package stocks

import (
	"math"
	"math/rand"
	"time"
)

// round2 округляет до 2 знаков после запятой
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateCandles генерирует синтетическую историю OHLC свечей для акции.
// Возвращает days+1 дневных свечей, от старых к новым, последняя - сегодняшняя.
// Волатильность привязана к базовой цене: каждая свеча открывается около
// закрытия предыдущей с отклонением до 2% от базы.
func GenerateCandles(basePrice float64, days int) []Candle {
	return generateCandles(basePrice, days, rand.New(rand.NewSource(time.Now().UnixNano())), time.Now())
}

func generateCandles(basePrice float64, days int, rng *rand.Rand, now time.Time) []Candle {
	if days < 0 {
		days = 0
	}

	volatility := basePrice * 0.02
	candles := make([]Candle, 0, days+1)

	price := basePrice
	start := now.AddDate(0, 0, -days)

	for i := 0; i <= days; i++ {
		day := start.AddDate(0, 0, i)
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

		open := price + (rng.Float64()*2-1)*volatility
		if open < 0 {
			open = price
		}
		close := open + (rng.Float64()*2-1)*volatility
		if close < 0 {
			close = open
		}

		high := math.Max(open, close) + rng.Float64()*volatility/2
		low := math.Min(open, close) - rng.Float64()*volatility/2
		if low < 0 {
			low = math.Min(open, close)
		}

		candles = append(candles, Candle{
			Time:  day,
			Open:  round2(open),
			High:  round2(high),
			Low:   round2(low),
			Close: round2(close),
		})

		price = close
	}

	return candles
}
