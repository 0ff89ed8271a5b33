// internal/stocks/view.go
package stocks

import "fmt"

// PriceChangePercent возвращает изменение цены в процентах относительно
// открытия текущей дневной свечи, округленное до 2 знаков.
// false - если акция не найдена или свечей нет.
func (m *Manager) PriceChangePercent(id string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stock := m.findByID(id)
	if stock == nil || len(stock.Candles) == 0 {
		return 0, false
	}

	open := stock.Candles[len(stock.Candles)-1].Open
	if open == 0 {
		return 0, false
	}

	return round2((stock.Price - open) / open * 100), true
}

// formatChange форматирует процент изменения со знаком: "+1.25%" / "-0.80%"
func formatChange(change float64) string {
	prefix := ""
	if change >= 0 {
		prefix = "+"
	}
	return fmt.Sprintf("%s%.2f%%", prefix, change)
}

// Formatted возвращает снапшот всех акций в виде для фронтенда
func (m *Manager) Formatted() []FormattedStock {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]FormattedStock, 0, len(m.stocks))
	for _, stock := range m.stocks {
		change := 0.0
		if len(stock.Candles) > 0 {
			if open := stock.Candles[len(stock.Candles)-1].Open; open != 0 {
				change = round2((stock.Price - open) / open * 100)
			}
		}

		result = append(result, FormattedStock{
			ID:          stock.ID,
			Symbol:      stock.Ticker,
			Name:        stock.Name,
			Price:       round2(stock.Price),
			Change:      formatChange(change),
			ChangeValue: change,
			Quantity:    stock.Quantity,
			Value:       round2(stock.Value),
		})
	}
	return result
}

// CandleSeries возвращает свечи акции по тикеру (без учета регистра).
// Для неизвестного тикера - пустая последовательность.
func (m *Manager) CandleSeries(ticker string) []Candle {
	stock, ok := m.GetByTicker(ticker)
	if !ok {
		return []Candle{}
	}
	return stock.Candles
}
