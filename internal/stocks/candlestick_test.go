package stocks

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestGenerateCandlesCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	now := time.Date(2025, 5, 20, 13, 0, 0, 0, time.UTC)

	candles := generateCandles(2500, 30, rng, now)
	if len(candles) != 31 {
		t.Fatalf("expected 31 candles, got %d", len(candles))
	}

	// Даты строго возрастают по дням, последняя - сегодняшняя
	for i := 1; i < len(candles); i++ {
		if !candles[i].Time.After(candles[i-1].Time) {
			t.Fatalf("candle times not increasing at %d", i)
		}
	}
	last := candles[len(candles)-1].Time
	if last.Year() != 2025 || last.Month() != 5 || last.Day() != 20 {
		t.Errorf("last candle must be today, got %v", last)
	}
}

func TestGenerateCandlesOHLCInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for _, base := range []float64{10, 420, 2500, 9800} {
		candles := generateCandles(base, 60, rng, time.Now())
		for i, c := range candles {
			if c.High < math.Max(c.Open, c.Close) {
				t.Errorf("base %f candle %d: high %f below max(open, close)", base, i, c.High)
			}
			if c.Low > math.Min(c.Open, c.Close) {
				t.Errorf("base %f candle %d: low %f above min(open, close)", base, i, c.Low)
			}
			if c.Low < 0 {
				t.Errorf("base %f candle %d: negative low %f", base, i, c.Low)
			}
		}
	}
}

func TestGenerateCandlesRounded(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	candles := generateCandles(1500, 10, rng, time.Now())

	for i, c := range candles {
		for _, v := range []float64{c.Open, c.High, c.Low, c.Close} {
			if round2(v) != v {
				t.Errorf("candle %d: value %v not rounded to 2 decimals", i, v)
			}
		}
	}
}

func TestGenerateCandlesZeroDays(t *testing.T) {
	candles := GenerateCandles(100, 0)
	if len(candles) != 1 {
		t.Fatalf("expected single candle, got %d", len(candles))
	}
}
