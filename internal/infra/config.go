package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xela07ax/trustlens-engine/internal/domain"
)

// Config — корневая структура конфигурации движка.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RedisConfig описывает подключение к Redis (кэш и поток событий).
// Пустой Addr переключает движок на встроенный in-memory кэш.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig описывает подключение к PostgreSQL (опциональный
// сток аудита). Используется только при audit.sink = "postgres".
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// AuthConfig содержит путь к RSA-ключу для проверки входящих токенов.
// Если ключ не задан, API работает без аутентификации (dev-режим).
type AuthConfig struct {
	PublicKeyPath string `mapstructure:"public_key_path"`
	PublicKey     []byte
}

// EngineConfig — настройки ядра оркестрации.
type EngineConfig struct {
	// AnalyzerTimeout — потолок ожидания одного анализатора.
	// Превышение трактуется как ERROR этого домена, батч не прерывается.
	AnalyzerTimeout time.Duration `mapstructure:"analyzer_timeout"`

	// CacheTTL — время жизни записи в кэше результатов
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// Weights — таблица весов доменов для итогового скора.
	// Нормировка всегда идет по присутствующим доменам.
	Weights WeightsConfig `mapstructure:"weights"`

	// Надежность внешних провайдеров
	SourceAttempts    uint          `mapstructure:"source_attempts"`
	SourceCallTimeout time.Duration `mapstructure:"source_call_timeout"`
	SourceRPS         float64       `mapstructure:"source_rps"`
	SourceBurst       int           `mapstructure:"source_burst"`
}

// WeightsConfig — относительная важность эвиденциальных доменов.
type WeightsConfig struct {
	Wallet   float64 `mapstructure:"wallet"`
	Contract float64 `mapstructure:"contract"`
	Social   float64 `mapstructure:"social"`
	Graph    float64 `mapstructure:"graph"`
}

// Map переводит конфиг в таблицу весов ядра по именам доменов.
func (w WeightsConfig) Map() map[string]float64 {
	return map[string]float64{
		domain.DomainWallet:   w.Wallet,
		domain.DomainContract: w.Contract,
		domain.DomainSocial:   w.Social,
		domain.DomainGraph:    w.Graph,
	}
}

// AuditConfig выбирает сток аудит-событий.
type AuditConfig struct {
	Sink          string        `mapstructure:"sink"` // "redis" | "postgres" | "off"
	BufferSize    int           `mapstructure:"buffer_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	BatchSize     int           `mapstructure:"batch_size"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 2. ENV перекрывает файл: ENGINE_CACHE_TTL=5m перекроет engine.cache_ttl
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 6. Ключ проверки токенов: напрямую из ENV или из файла по пути
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("engine.analyzer_timeout", 30*time.Second)
	v.SetDefault("engine.cache_ttl", 30*time.Minute)
	v.SetDefault("engine.weights.wallet", 0.4)
	v.SetDefault("engine.weights.contract", 0.3)
	v.SetDefault("engine.weights.social", 0.1)
	v.SetDefault("engine.weights.graph", 0.2)
	v.SetDefault("engine.source_attempts", 3)
	v.SetDefault("engine.source_call_timeout", 10*time.Second)
	v.SetDefault("engine.source_rps", 100)
	v.SetDefault("engine.source_burst", 20)

	v.SetDefault("audit.sink", "redis")
	v.SetDefault("audit.buffer_size", 10000)
	v.SetDefault("audit.flush_interval", 500*time.Millisecond)
	v.SetDefault("audit.batch_size", 100)

	v.SetDefault("database.max_conns", 15)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource — ключ либо напрямую в ENV (Docker/K8s), либо файлом
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
