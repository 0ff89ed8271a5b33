// internal/server/stock_handlers.go
package server

import (
	"net/http"
)

// handlePopular отдает список популярных акций с вычисленным изменением
func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stocks": s.manager.Formatted(),
	})
}

// handleSpecific отдает историю свечей акции по тикеру
func (s *Server) handleSpecific(w http.ResponseWriter, r *http.Request) {
	symbol := r.PathValue("symbol")

	candles := s.manager.CandleSeries(symbol)
	if len(candles) == 0 {
		writeError(w, http.StatusNotFound, "stock not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"final": candles,
	})
}

// handleHistory отдает историю цены и изменение по id акции
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	stock, ok := s.manager.GetByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "stock not found")
		return
	}

	change, _ := s.manager.PriceChangePercent(id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":           stock.ID,
		"symbol":       stock.Ticker,
		"price":        stock.Price,
		"change":       change,
		"priceHistory": stock.PriceHistory,
	})
}

// handlePortfolio отдает суммарную стоимость портфеля
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": s.manager.TotalValue(),
	})
}

// handleSimulationStart запускает часы симуляции
func (s *Server) handleSimulationStart(w http.ResponseWriter, r *http.Request) {
	s.simulator.Start()
	writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

// handleSimulationStop останавливает часы симуляции
func (s *Server) handleSimulationStop(w http.ResponseWriter, r *http.Request) {
	s.simulator.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}
