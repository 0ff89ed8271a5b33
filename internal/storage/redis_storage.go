// internal/storage/redis_storage.go
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"stock-sim-backend/pkg/logger"
)

// RedisStorage - хранилище снапшотов на базе Redis
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage создает Redis хранилище и проверяет подключение
func NewRedisStorage(addr, password string, db int) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("✅ Подключение к Redis установлено: %s (db %d)", addr, db)

	return &RedisStorage{
		client: client,
		prefix: "stocksim:",
	}, nil
}

// Get получает значение по ключу
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

// Set устанавливает значение по ключу. Снапшоты живут без TTL:
// актуальность обеспечивает сама симуляция на каждом тике.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Close закрывает подключение к Redis
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
