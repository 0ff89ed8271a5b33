// internal/stocks/manager.go
package stocks

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"stock-sim-backend/internal/storage"
	"stock-sim-backend/pkg/logger"
)

const snapshotKey = "stocks"

// seedDays - глубина генерируемой истории свечей при посеве
const seedDays = 29

// Manager - реестр акций. Владеет всем in-memory состоянием и
// опосредует любые чтения и записи. Снапшоты уходят в key-value
// хранилище по принципу best-effort: ошибки логируются и глотаются.
type Manager struct {
	mu      sync.RWMutex
	stocks  []*Stock
	storage storage.SnapshotStorage

	historyLimit int
	candleLimit  int

	lastID int64 // для монотонных id на базе времени
}

// NewManager создает реестр акций поверх заданного хранилища
func NewManager(store storage.SnapshotStorage, historyLimit, candleLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	if candleLimit <= 0 {
		candleLimit = 60
	}
	return &Manager{
		storage:      store,
		historyLimit: historyLimit,
		candleLimit:  candleLimit,
	}
}

// Seed инициализирует реестр: сначала пробуем восстановиться из
// сохраненного снапшота, при его отсутствии сеем дефолтный набор
// из 20 популярных акций NSE. Вызывается один раз при старте.
func (m *Manager) Seed(ctx context.Context) {
	if m.Restore(ctx) {
		return
	}

	m.mu.Lock()
	m.stocks = defaultStocks()
	m.mu.Unlock()

	logger.Info("🌱 Реестр засеян дефолтным набором из %d акций", len(m.stocks))
	m.Persist(ctx)
}

// defaultStocks возвращает стартовый набор акций
func defaultStocks() []*Stock {
	seed := []struct {
		id       string
		name     string
		ticker   string
		quantity float64
		price    float64
	}{
		{"1", "Reliance Industries", "RELIANCE", 100, 2500},
		{"2", "Tata Consultancy Services", "TCS", 100, 3400},
		{"3", "Infosys", "INFY", 100, 1500},
		{"4", "HDFC Bank", "HDFCBANK", 100, 1600},
		{"5", "ICICI Bank", "ICICIBANK", 100, 800},
		{"6", "Bharti Airtel", "BHARTIARTL", 100, 750},
		{"7", "Asian Paints", "ASIANPAINT", 100, 3200},
		{"8", "Hindustan Unilever", "HINDUNILVR", 100, 2600},
		{"9", "ITC Limited", "ITC", 100, 420},
		{"10", "State Bank of India", "SBIN", 100, 550},
		{"11", "Axis Bank", "AXISBANK", 100, 950},
		{"12", "Wipro Limited", "WIPRO", 100, 420},
		{"13", "Tech Mahindra", "TECHM", 100, 1200},
		{"14", "Tata Motors", "TATAMOTORS", 100, 580},
		{"15", "Maruti Suzuki", "MARUTI", 100, 9800},
		{"16", "Bajaj Finance", "BAJFINANCE", 100, 6900},
		{"17", "Adani Ports", "ADANIPORTS", 100, 780},
		{"18", "Sun Pharma", "SUNPHARMA", 100, 1100},
		{"19", "Dr Reddys Labs", "DRREDDY", 100, 4800},
		{"20", "Larsen & Toubro", "LT", 100, 2300},
	}

	stocks := make([]*Stock, 0, len(seed))
	for _, s := range seed {
		stocks = append(stocks, &Stock{
			ID:           s.id,
			Name:         s.name,
			Ticker:       s.ticker,
			Quantity:     s.quantity,
			Price:        s.price,
			Value:        s.price * s.quantity,
			PriceHistory: []PricePoint{},
			Candles:      GenerateCandles(s.price, seedDays),
		})
	}
	return stocks
}

// nextID выдает уникальный id на базе текущего времени.
// Монотонность гарантируется под блокировкой реестра.
func (m *Manager) nextID() string {
	id := time.Now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return strconv.FormatInt(id, 10)
}

// Add добавляет акцию в реестр. Недостающие поля заполняются:
// id - по текущему времени, тикер - из первого слова названия,
// value пересчитывается, свечи генерируются от стартовой цены.
func (m *Manager) Add(ctx context.Context, stock *Stock) *Stock {
	m.mu.Lock()

	if stock.ID == "" {
		stock.ID = m.nextID()
	}
	if stock.Ticker == "" {
		if fields := strings.Fields(stock.Name); len(fields) > 0 {
			stock.Ticker = strings.ToUpper(fields[0])
		}
	}

	stock.Value = stock.Price * stock.Quantity

	if stock.PriceHistory == nil {
		stock.PriceHistory = []PricePoint{}
	}
	if len(stock.Candles) == 0 {
		stock.Candles = GenerateCandles(stock.Price, seedDays)
	}

	m.stocks = append(m.stocks, stock)
	result := stock.clone()
	m.mu.Unlock()

	m.Persist(ctx)
	return result
}

// Update частично обновляет акцию. Возвращает ErrStockNotFound,
// если id неизвестен. ID и тикер никогда не затираются пустыми.
func (m *Manager) Update(ctx context.Context, id string, upd StockUpdate) (*Stock, error) {
	m.mu.Lock()

	stock := m.findByID(id)
	if stock == nil {
		m.mu.Unlock()
		return nil, ErrStockNotFound
	}

	if upd.Name != nil {
		stock.Name = *upd.Name
	}
	if upd.Ticker != nil && *upd.Ticker != "" {
		stock.Ticker = *upd.Ticker
	}

	if upd.Price != nil || upd.Quantity != nil {
		if upd.Price != nil {
			// Цена не бывает отрицательной, как и на тике
			stock.Price = math.Max(*upd.Price, 0)
		}
		if upd.Quantity != nil {
			stock.Quantity = *upd.Quantity
		}
		stock.Value = stock.Price * stock.Quantity
	}

	result := stock.clone()
	m.mu.Unlock()

	m.Persist(ctx)
	return result, nil
}

// UpdateQuantity обновляет количество акций
func (m *Manager) UpdateQuantity(ctx context.Context, id string, quantity float64) (*Stock, error) {
	return m.Update(ctx, id, StockUpdate{Quantity: &quantity})
}

// Remove удаляет акцию из реестра. Возвращает true, если удаление произошло.
func (m *Manager) Remove(ctx context.Context, id string) bool {
	m.mu.Lock()

	removed := false
	for i, s := range m.stocks {
		if s.ID == id {
			m.stocks = append(m.stocks[:i], m.stocks[i+1:]...)
			removed = true
			break
		}
	}
	m.mu.Unlock()

	if removed {
		m.Persist(ctx)
	}
	return removed
}

// findByID ищет акцию по id. Вызывается под блокировкой.
func (m *Manager) findByID(id string) *Stock {
	for _, s := range m.stocks {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// GetAll возвращает копии всех акций
func (m *Manager) GetAll() []Stock {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Stock, 0, len(m.stocks))
	for _, s := range m.stocks {
		result = append(result, *s.clone())
	}
	return result
}

// GetByID возвращает акцию по id
func (m *Manager) GetByID(id string) (*Stock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s := m.findByID(id); s != nil {
		return s.clone(), true
	}
	return nil, false
}

// GetByTicker возвращает акцию по тикеру (без учета регистра)
func (m *Manager) GetByTicker(ticker string) (*Stock, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.stocks {
		if strings.EqualFold(s.Ticker, ticker) {
			return s.clone(), true
		}
	}
	return nil, false
}

// TotalValue возвращает суммарную стоимость портфеля
func (m *Manager) TotalValue() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0.0
	for _, s := range m.stocks {
		total += s.Value
	}
	return total
}

// Count возвращает количество акций в реестре
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stocks)
}

// Persist сохраняет снапшот реестра в хранилище.
// Ошибки записи не фатальны: логируем и продолжаем с in-memory состоянием.
func (m *Manager) Persist(ctx context.Context) {
	m.mu.RLock()
	data, err := json.Marshal(m.stocks)
	m.mu.RUnlock()

	if err != nil {
		logger.Error("❌ Не удалось сериализовать снапшот акций: %v", err)
		return
	}

	if err := m.storage.Set(ctx, snapshotKey, string(data)); err != nil {
		logger.Warn("⚠️ Не удалось сохранить снапшот акций: %v", err)
	}
}

// Restore восстанавливает реестр из снапшота. Любая ошибка чтения
// трактуется как "сохраненного состояния нет".
func (m *Manager) Restore(ctx context.Context) bool {
	data, err := m.storage.Get(ctx, snapshotKey)
	if err != nil {
		if err != storage.ErrNotFound {
			logger.Warn("⚠️ Не удалось прочитать снапшот акций: %v", err)
		}
		return false
	}

	var restored []*Stock
	if err := json.Unmarshal([]byte(data), &restored); err != nil {
		logger.Warn("⚠️ Снапшот акций поврежден, используем дефолтные данные: %v", err)
		return false
	}

	if len(restored) == 0 {
		return false
	}

	m.mu.Lock()
	m.stocks = restored
	m.mu.Unlock()

	logger.Info("♻️ Реестр восстановлен из снапшота: %d акций", len(restored))
	return true
}
