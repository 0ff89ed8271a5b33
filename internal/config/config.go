// config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура конфигурации приложения
type Config struct {
	// HTTP Server
	HttpPort    string
	CorsOrigins []string

	// Simulation
	SimulationSpeed   time.Duration // Интервал между тиками симуляции
	PriceHistorySize  int           // Лимит точек истории цены на акцию
	CandleHistorySize int           // Лимит свечей на акцию
	AutoStart         bool          // Запускать симуляцию сразу при старте

	// Storage (снапшоты состояния акций)
	StorageBackend string // "redis", "memory" или "none"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Database (пользователи)
	DBEnabled  bool
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth
	JwtSecret string
	TokenTTL  time.Duration

	// Logging
	LogLevel string
	LogFile  string
	Debug    bool
}

// LoadConfig загружает конфигурацию из .env файла
func LoadConfig(envPath string) (*Config, error) {
	// Загружаем .env файл
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
	}

	config := &Config{
		// HTTP
		HttpPort:    getEnvString("HTTP_PORT", "5001"),
		CorsOrigins: strings.Split(getEnvString("CORS_ORIGINS", "*"), ","),

		// Simulation
		SimulationSpeed:   time.Duration(getEnvInt("SIMULATION_SPEED", 60)) * time.Second,
		PriceHistorySize:  getEnvInt("PRICE_HISTORY_SIZE", 100),
		CandleHistorySize: getEnvInt("CANDLE_HISTORY_SIZE", 60),
		AutoStart:         getEnvBool("AUTO_START_SIMULATION", true),

		// Storage
		StorageBackend: strings.ToLower(getEnvString("STORAGE_BACKEND", "memory")),
		RedisAddr:      getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnvString("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		// Database
		DBEnabled:  getEnvBool("DB_ENABLED", false),
		DBHost:     getEnvString("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnvString("DB_USER", "postgres"),
		DBPassword: getEnvString("DB_PASSWORD", ""),
		DBName:     getEnvString("DB_NAME", "stocks"),
		DBSSLMode:  getEnvString("DB_SSLMODE", "disable"),

		// Auth
		JwtSecret: getEnvString("JWT_SECRET", ""),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL", 3600)) * time.Second,

		// Logging
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		LogFile:  getEnvString("LOG_FILE", "logs/server.log"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return config, nil
}

// Вспомогательные функции для парсинга переменных окружения
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.SimulationSpeed < time.Second {
		return fmt.Errorf("simulation speed must be at least 1 second")
	}

	if c.PriceHistorySize < 1 {
		return fmt.Errorf("price history size must be positive")
	}

	if c.CandleHistorySize < 1 {
		return fmt.Errorf("candle history size must be positive")
	}

	switch c.StorageBackend {
	case "redis", "memory", "none":
	default:
		return fmt.Errorf("unknown storage backend %q (expected redis, memory or none)", c.StorageBackend)
	}

	if c.DBEnabled && c.JwtSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when DB_ENABLED=true")
	}

	return nil
}

// DSN возвращает строку подключения к PostgreSQL
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
