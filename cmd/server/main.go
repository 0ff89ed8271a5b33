package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stock-sim-backend/internal/config"
	"stock-sim-backend/internal/database"
	"stock-sim-backend/internal/events"
	"stock-sim-backend/internal/scheduler"
	"stock-sim-backend/internal/server"
	"stock-sim-backend/internal/stocks"
	"stock-sim-backend/internal/storage"
	"stock-sim-backend/internal/users"
	"stock-sim-backend/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Некорректная конфигурация: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogFile, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.GetLogger().Close()

	printHeader("СИМУЛЯТОР ФОНДОВОГО РЫНКА")
	fmt.Printf("🔧 Конфигурация:\n")
	fmt.Printf("   Порт HTTP: %s\n", cfg.HttpPort)
	fmt.Printf("   Интервал тика: %v\n", cfg.SimulationSpeed)
	fmt.Printf("   Хранилище снапшотов: %s\n", cfg.StorageBackend)
	fmt.Printf("   База пользователей: %s\n", map[bool]string{true: "включена", false: "выключена"}[cfg.DBEnabled])
	fmt.Println()

	// Выбираем бэкенд хранилища снапшотов
	store := buildStorage(cfg)

	// Реестр акций: восстановление из снапшота или дефолтный посев
	manager := stocks.NewManager(store, cfg.PriceHistorySize, cfg.CandleHistorySize)
	manager.Seed(context.Background())

	// Шина событий и websocket-хаб
	bus := events.NewBus()
	bus.Start()

	hub := server.NewHub()
	bus.Subscribe(events.StocksUpdated, hub)

	// Часы симуляции
	simulator := stocks.NewSimulator(manager, cfg.SimulationSpeed, events.NewSnapshotPublisher(bus))
	if cfg.AutoStart {
		simulator.Start()
	}

	// База пользователей (опционально)
	var authService *users.Service
	var dbService *database.Service
	if cfg.DBEnabled {
		dbService = database.NewService(cfg)
		if err := dbService.Start(); err != nil {
			logger.GetLogger().Fatal("Не удалось подключиться к базе данных: %v", err)
		}
		repo := users.NewUserRepository(dbService.DB())
		authService = users.NewService(repo, cfg.JwtSecret, cfg.TokenTTL)
	} else {
		logger.Warn("⚠️ DB_ENABLED=false: маршруты пользователей будут отвечать 503")
	}

	// Фоновые задачи
	sched := scheduler.New()
	sched.Register(&scheduler.Job{
		Name:     "status-report",
		Schedule: scheduler.Every(5 * time.Minute),
		Handler: func(ctx context.Context) error {
			logger.GetLogger().Status(map[string]string{
				"Акций в реестре":   fmt.Sprintf("%d", manager.Count()),
				"Портфель":          fmt.Sprintf("%.2f", manager.TotalValue()),
				"Тиков выполнено":   fmt.Sprintf("%d", simulator.Ticks()),
				"Симуляция активна": fmt.Sprintf("%t", simulator.Running()),
			})
			return nil
		},
	})
	sched.Register(&scheduler.Job{
		Name:     "snapshot-backup",
		Schedule: scheduler.DailyAt(0, 0),
		Handler: func(ctx context.Context) error {
			manager.Persist(ctx)
			return nil
		},
	})
	sched.Start()

	// HTTP сервер
	srv := server.New(cfg, manager, simulator, authService, hub)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Ожидаем сигнал остановки
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("📨 Получен сигнал %v, останавливаемся", sig)
	case err := <-errChan:
		if err != nil {
			logger.Error("❌ HTTP сервер упал: %v", err)
		}
	}

	// Корректная остановка: сначала часы, затем все остальное
	simulator.Cleanup()
	sched.Stop()
	bus.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("❌ Ошибка остановки HTTP сервера: %v", err)
	}

	if dbService != nil {
		dbService.Stop()
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		closer.Close()
	}

	logger.Info("👋 Сервер остановлен")
}

// buildStorage выбирает бэкенд хранилища снапшотов по конфигурации.
// При недоступном Redis деградируем до in-memory - снапшоты
// не авторитетны, падать из-за них нельзя.
func buildStorage(cfg *config.Config) storage.SnapshotStorage {
	switch cfg.StorageBackend {
	case "redis":
		redisStore, err := storage.NewRedisStorage(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("⚠️ Redis недоступен (%v), переключаемся на in-memory хранилище", err)
			return storage.NewMemoryStorage()
		}
		return redisStore
	case "none":
		return storage.NewNoopStorage()
	default:
		return storage.NewMemoryStorage()
	}
}

func printHeader(title string) {
	line := strings.Repeat("═", 50)
	fmt.Println(line)
	fmt.Printf("  %s\n", title)
	fmt.Println(line)
}
