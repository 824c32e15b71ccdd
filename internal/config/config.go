package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Nats     NatsConfig
	Order    OrderConfig
	Outbox   OutboxConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JwtSecret          string
}

func (a AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

type DatabaseConfig struct {
	Connection   string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	URL string
	// UseLocalLock swaps redsync for the in-process locker. Single instance only.
	UseLocalLock bool
}

type NatsConfig struct {
	URL    string
	Stream string
}

type OrderConfig struct {
	AutoCancelDelay time.Duration
	LockTTL         time.Duration
	LockWait        time.Duration
	LockRetryDelay  time.Duration
	WorkerCount     int
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxBackoff   time.Duration
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/order.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379"),
			UseLocalLock: getEnvAsBool("ORDER_LOCAL_LOCK", false),
		},
		Nats: NatsConfig{
			URL:    getEnv("NATS_URL", "nats://localhost:4222"),
			Stream: getEnv("NATS_STREAM", "BOOKING_ORDER"),
		},
		Order: OrderConfig{
			AutoCancelDelay: getEnvAsDuration("ORDER_AUTO_CANCEL_DELAY", 15*time.Minute),
			LockTTL:         getEnvAsDuration("ORDER_LOCK_TTL", 30*time.Second),
			LockWait:        getEnvAsDuration("ORDER_LOCK_WAIT", 5*time.Second),
			LockRetryDelay:  getEnvAsDuration("ORDER_LOCK_RETRY_DELAY", 100*time.Millisecond),
			WorkerCount:     getEnvAsInt("ORDER_WORKER_COUNT", 10),
		},
		Outbox: OutboxConfig{
			PollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", time.Second),
			BatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 100),
			MaxBackoff:   getEnvAsDuration("OUTBOX_MAX_BACKOFF", 5*time.Minute),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "booking-order"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("15m", "250ms").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
