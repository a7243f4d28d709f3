package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации сервиса.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig описывает подключение к PostgreSQL. Пустой URL — журнал пишется в лог.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (Pub/Sub). Пустой Addr — Redis не используется.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// GeminiConfig задает параметры исходящих вызовов модели.
type GeminiConfig struct {
	// APIKey используется только CLI; сервис берет ключ из ?apiKey= каждого запроса
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Mock — отвечать примером без обращения к модели (демо-режим)
	Mock bool `mapstructure:"mock"`
}

// EngineConfig настраивает повторы, защиту вызовов и журнал.
type EngineConfig struct {
	MaxRetries             int           `mapstructure:"max_retries"`
	Backoff                time.Duration `mapstructure:"backoff"`
	RequireAllocationFirst bool          `mapstructure:"require_allocation_first"`

	// Rate limiter и Circuit Breaker для вызовов модели
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	RateBurst     int           `mapstructure:"rate_burst"`
	CBFailures    uint32        `mapstructure:"cb_failures"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`

	JournalBufferSize    int           `mapstructure:"journal_buffer_size"`
	JournalFlushInterval time.Duration `mapstructure:"journal_flush_interval"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла, ENV и флагов (если переданы).
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")    // имя файла без расширения
	v.SetConfigType("yaml")      // формат
	v.AddConfigPath(".")         // ищем в корне
	v.AddConfigPath("./configs") // и в папке с конфигами

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: GEMINI_MODEL=... перекроет gemini.model
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Флаги командной строки: имя флага совпадает с ключом (gemini.api_key)
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	// 5. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 6. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate отсекает значения, с которыми сервис работать не сможет.
func (c *Config) Validate() error {
	if c.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must be >= 0, got %d", c.Engine.MaxRetries)
	}
	if c.Engine.Backoff < 0 {
		return fmt.Errorf("engine.backoff must be >= 0, got %s", c.Engine.Backoff)
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini.timeout must be positive, got %s", c.Gemini.Timeout)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	// Запрос анализа держит соединение на все попытки и паузы
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("grpc.port", 50052)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.timeout", 60*time.Second)
	v.SetDefault("engine.max_retries", 2)
	v.SetDefault("engine.backoff", 4*time.Second)
	v.SetDefault("engine.require_allocation_first", true)
	v.SetDefault("engine.rate_per_second", 1.0)
	v.SetDefault("engine.rate_burst", 3)
	v.SetDefault("engine.cb_failures", 5)
	v.SetDefault("engine.cb_timeout", 30*time.Second)
	v.SetDefault("engine.journal_buffer_size", 1000)
	v.SetDefault("engine.journal_flush_interval", 1*time.Second)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
