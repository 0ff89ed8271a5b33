// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound возвращается, когда ключ отсутствует в хранилище
var ErrNotFound = errors.New("storage: key not found")

// SnapshotStorage - key-value хранилище для снапшотов состояния.
// Реализации: Redis, in-memory и no-op заглушка.
type SnapshotStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStorage - in-memory реализация хранилища
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage создает in-memory хранилище
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]string),
	}
}

// Get получает значение по ключу
func (s *MemoryStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, exists := s.data[key]
	if !exists {
		return "", ErrNotFound
	}
	return value, nil
}

// Set устанавливает значение по ключу
func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// NoopStorage - заглушка для окружений без долговременного хранилища
type NoopStorage struct{}

// NewNoopStorage создает no-op хранилище
func NewNoopStorage() *NoopStorage {
	return &NoopStorage{}
}

func (s *NoopStorage) Get(ctx context.Context, key string) (string, error) {
	return "", ErrNotFound
}

func (s *NoopStorage) Set(ctx context.Context, key, value string) error {
	return nil
}
