// internal/database/service.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"stock-sim-backend/internal/config"
	"stock-sim-backend/pkg/logger"
)

// Service - сервис для работы с базой данных пользователей
type Service struct {
	config *config.Config
	db     *sqlx.DB
}

// NewService создает сервис базы данных
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// Start открывает подключение, настраивает пул и применяет миграции
func (s *Service) Start() error {
	logger.Info("📡 Подключение к PostgreSQL: %s:%d/%s",
		s.config.DBHost, s.config.DBPort, s.config.DBName)

	db, err := sqlx.Open("postgres", s.config.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	logger.Info("✅ Подключение к PostgreSQL установлено")

	if err := s.migrate(); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	return nil
}

// Stop закрывает подключение
func (s *Service) Stop() error {
	if s.db == nil {
		return nil
	}
	logger.Info("🛑 Закрытие подключения к PostgreSQL")
	return s.db.Close()
}

// DB возвращает пул соединений
func (s *Service) DB() *sqlx.DB {
	return s.db
}

// migrate применяет схему таблицы пользователей
func (s *Service) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		balance NUMERIC(18, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	logger.Info("✅ Схема базы данных актуальна")
	return nil
}
