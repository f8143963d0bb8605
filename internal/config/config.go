package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Rates     RatesConfig
	Universe  UniverseConfig
	Signals   SignalsConfig
	Risk      RiskConfig
	Execution ExecutionConfig
	Logging   LoggingConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig - настройки подключения к БД (журнал циклов, опционально)
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// RatesConfig - настройки клиента агрегатора funding rates
type RatesConfig struct {
	BaseURL      string
	Timeout      time.Duration
	CacheTTL     time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	// Биржи с часовым интервалом начисления: ставка приводится к 8h
	HourlyExchanges []string
	// Биржи, чей фид уже в каноническом знаке (positive = longs pay shorts)
	CanonicalSignExchanges []string
}

// UniverseConfig - настройки отбора торгуемой вселенной
type UniverseConfig struct {
	Size                     int
	FRDiffMin                float64
	AllowSingleExchangePairs bool
	// Явный режим: "dynamic" (отбор по дисперсии ставок) или "static"
	Mode          string
	StaticSymbols []string
	Exchanges     []string
}

// SignalsConfig - пороги генерации сигналов
type SignalsConfig struct {
	MinPersistenceWindows int
	MinPairScore          float64
	MinOpenInterestUSD    float64
	MinLiquidityScore     float64
	ExpectedEdgeMinBps    float64
	TakerCostBps          float64
	MaxNewPositionsPerCycle int
}

// RiskConfig - лимиты и пороги риск-машины
type RiskConfig struct {
	MaxNotionalPerPairUSD     float64
	MaxNotionalPerExchangeUSD float64
	MaxTotalNotionalUSD       float64
	MaxDrawdownStopPct        float64
	ReduceModeDrawdownPct     float64
	MaxLeverage               float64
	NormalLeverageCap         float64
	DeltaThresholdPct         float64
}

// ExecutionConfig - параметры исполнения ордеров
type ExecutionConfig struct {
	MaxRetries        int
	RetryBackoff      time.Duration
	MinOrderValueUSD  float64
	CycleInterval     time.Duration
	CapitalUSD        float64
}

// LoggingConfig - настройки логирования
type LoggingConfig struct {
	Level       string
	Format      string
	Development bool
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "fundingarb"),
			User:     getEnv("DB_USER", "user"),
			Password: getEnv("DB_PASSWORD", "password"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Rates: RatesConfig{
			BaseURL:    getEnv("RATES_BASE_URL", "https://data.loris.tools"),
			Timeout:    getEnvAsDuration("RATES_TIMEOUT", 10*time.Second),
			CacheTTL:   getEnvAsDuration("RATES_CACHE_TTL", 60*time.Second),
			MaxRetries: getEnvAsInt("RATES_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("RATES_RETRY_DELAY", 2*time.Second),
			HourlyExchanges: getEnvAsSlice("RATES_HOURLY_EXCHANGES",
				[]string{"extended", "hyperliquid", "lighter", "vest"}),
			CanonicalSignExchanges: getEnvAsSlice("RATES_CANONICAL_SIGN_EXCHANGES",
				[]string{"binance", "bybit", "okx", "hyperliquid", "lighter", "extended", "vest"}),
		},
		Universe: UniverseConfig{
			Size:                     getEnvAsInt("UNIVERSE_SIZE", 25),
			FRDiffMin:                getEnvAsFloat("FR_DIFF_MIN", 0.0025),
			AllowSingleExchangePairs: getEnvAsBool("ALLOW_SINGLE_EXCHANGE_PAIRS", false),
			Mode:                     getEnv("UNIVERSE_MODE", "dynamic"),
			StaticSymbols:            getEnvAsSlice("UNIVERSE_STATIC_SYMBOLS", nil),
			Exchanges:                getEnvAsSlice("EXCHANGES", []string{"binance", "bybit", "hyperliquid"}),
		},
		Signals: SignalsConfig{
			MinPersistenceWindows:   getEnvAsInt("MIN_PERSISTENCE_WINDOWS", 3),
			MinPairScore:            getEnvAsFloat("MIN_PAIR_SCORE", 0.55),
			MinOpenInterestUSD:      getEnvAsFloat("MIN_OPEN_INTEREST_USD", 2_000_000),
			MinLiquidityScore:       getEnvAsFloat("MIN_LIQUIDITY_SCORE", 0.30),
			ExpectedEdgeMinBps:      getEnvAsFloat("EXPECTED_EDGE_MIN_BPS", 1),
			TakerCostBps:            getEnvAsFloat("TAKER_COST_BPS", 8),
			MaxNewPositionsPerCycle: getEnvAsInt("MAX_NEW_POSITIONS_PER_CYCLE", 3),
		},
		Risk: RiskConfig{
			MaxNotionalPerPairUSD:     getEnvAsFloat("MAX_NOTIONAL_PER_PAIR_USD", 25_000),
			MaxNotionalPerExchangeUSD: getEnvAsFloat("MAX_NOTIONAL_PER_EXCHANGE_USD", 75_000),
			MaxTotalNotionalUSD:       getEnvAsFloat("MAX_TOTAL_NOTIONAL_USD", 150_000),
			MaxDrawdownStopPct:        getEnvAsFloat("MAX_DRAWDOWN_STOP_PCT", 15),
			ReduceModeDrawdownPct:     getEnvAsFloat("REDUCE_MODE_DRAWDOWN_PCT", 10),
			MaxLeverage:               getEnvAsFloat("MAX_LEVERAGE", 5),
			NormalLeverageCap:         getEnvAsFloat("NORMAL_LEVERAGE_CAP", 2),
			DeltaThresholdPct:         getEnvAsFloat("DELTA_THRESHOLD_PCT", 10),
		},
		Execution: ExecutionConfig{
			MaxRetries:       getEnvAsInt("EXEC_MAX_RETRIES", 2),
			RetryBackoff:     getEnvAsDuration("EXEC_RETRY_BACKOFF", 500*time.Millisecond),
			MinOrderValueUSD: getEnvAsFloat("MIN_ORDER_VALUE_USD", 12),
			CycleInterval:    getEnvAsDuration("CYCLE_INTERVAL", 5*time.Minute),
			CapitalUSD:       getEnvAsFloat("CAPITAL_USD", 1000),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Валидация числовых диапазонов
	if err := cfg.validateRanges(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateRanges проверяет числовые диапазоны параметров
func (c *Config) validateRanges() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be between 1 and 65535, got %d", c.Database.Port)
	}

	if c.Universe.Size < 1 {
		return fmt.Errorf("UNIVERSE_SIZE must be positive, got %d", c.Universe.Size)
	}

	if c.Universe.Mode != "dynamic" && c.Universe.Mode != "static" {
		return fmt.Errorf("UNIVERSE_MODE must be 'dynamic' or 'static', got %q", c.Universe.Mode)
	}

	if c.Universe.Mode == "static" && len(c.Universe.StaticSymbols) == 0 {
		return fmt.Errorf("UNIVERSE_STATIC_SYMBOLS is required when UNIVERSE_MODE=static")
	}

	if c.Universe.FRDiffMin < 0 {
		return fmt.Errorf("FR_DIFF_MIN cannot be negative, got %v", c.Universe.FRDiffMin)
	}

	if len(c.Universe.Exchanges) == 0 {
		return fmt.Errorf("EXCHANGES cannot be empty")
	}

	if c.Signals.MinPersistenceWindows < 1 {
		return fmt.Errorf("MIN_PERSISTENCE_WINDOWS must be at least 1, got %d", c.Signals.MinPersistenceWindows)
	}

	if c.Signals.MinPairScore < 0 || c.Signals.MinPairScore > 1 {
		return fmt.Errorf("MIN_PAIR_SCORE must be within [0, 1], got %v", c.Signals.MinPairScore)
	}

	if c.Signals.MaxNewPositionsPerCycle < 0 {
		return fmt.Errorf("MAX_NEW_POSITIONS_PER_CYCLE cannot be negative, got %d", c.Signals.MaxNewPositionsPerCycle)
	}

	if c.Risk.ReduceModeDrawdownPct >= c.Risk.MaxDrawdownStopPct {
		return fmt.Errorf("REDUCE_MODE_DRAWDOWN_PCT (%v) must be below MAX_DRAWDOWN_STOP_PCT (%v)",
			c.Risk.ReduceModeDrawdownPct, c.Risk.MaxDrawdownStopPct)
	}

	if c.Risk.NormalLeverageCap > c.Risk.MaxLeverage {
		return fmt.Errorf("NORMAL_LEVERAGE_CAP (%v) cannot exceed MAX_LEVERAGE (%v)",
			c.Risk.NormalLeverageCap, c.Risk.MaxLeverage)
	}

	if c.Risk.MaxNotionalPerPairUSD <= 0 || c.Risk.MaxNotionalPerExchangeUSD <= 0 || c.Risk.MaxTotalNotionalUSD <= 0 {
		return fmt.Errorf("notional limits must be positive")
	}

	if c.Execution.MaxRetries < 0 {
		return fmt.Errorf("EXEC_MAX_RETRIES cannot be negative, got %d", c.Execution.MaxRetries)
	}

	if c.Execution.MaxRetries > 10 {
		return fmt.Errorf("EXEC_MAX_RETRIES should not exceed 10, got %d", c.Execution.MaxRetries)
	}

	if c.Execution.CycleInterval <= 0 {
		return fmt.Errorf("CYCLE_INTERVAL must be positive, got %v", c.Execution.CycleInterval)
	}

	if c.Execution.MinOrderValueUSD < 0 {
		return fmt.Errorf("MIN_ORDER_VALUE_USD cannot be negative, got %v", c.Execution.MinOrderValueUSD)
	}

	if c.Rates.MaxRetries < 1 {
		return fmt.Errorf("RATES_MAX_RETRIES must be at least 1, got %d", c.Rates.MaxRetries)
	}

	if c.Rates.CacheTTL < 0 {
		return fmt.Errorf("RATES_CACHE_TTL cannot be negative, got %v", c.Rates.CacheTTL)
	}

	return nil
}

// DSN возвращает строку подключения к базе данных
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// DSNWithoutPassword возвращает строку подключения без пароля (для логирования)
func (d DatabaseConfig) DSNWithoutPassword() string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Name, d.SSLMode)
}

// Вспомогательные функции для чтения переменных окружения

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
