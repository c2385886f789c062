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

// Config holds the runtime settings of the service.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DB    DBConfig
	Redis RedisConfig
	JWT   JWTConfig
	Kafka KafkaConfig

	RuleCacheTTL      time.Duration
	Location          *time.Location
	ExposeIssuedCodes bool

	CORSOrigins     string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// DBConfig selects the store driver and pool settings.
type DBConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN returns the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	URL string
}

// Enabled reports whether a redis URL was configured.
func (c RedisConfig) Enabled() bool {
	return c.URL != ""
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the full configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        GetEnv("PORT", "3000"),
		Environment: GetEnv("ENV", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Driver:          GetEnv("DB_DRIVER", "postgres"),
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "cardguard"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			SQLitePath:      GetEnv("SQLITE_PATH", "cardguard.db"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: GetEnv("REDIS_URL", ""),
		},
		JWT: JWTConfig{
			Secret: GetEnv("JWT_SECRET", ""),
			TTL:    GetDurationEnv("JWT_TTL", time.Hour),
			Issuer: GetEnv("JWT_ISSUER", "cardguard"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(GetEnv("KAFKA_BROKERS", "")),
			Topic:   GetEnv("KAFKA_TOPIC", "transaction-events"),
		},
		RuleCacheTTL:      GetDurationEnv("RULE_CACHE_TTL", 5*time.Minute),
		ExposeIssuedCodes: GetBoolEnv("EXPOSE_ISSUED_CODES", false),
		CORSOrigins:       GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		RateLimitMax:      GetIntEnv("RATE_LIMIT_MAX", 120),
		RateLimitWindow:   GetDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
	}

	loc := time.Local
	if tz := GetEnv("TIMEZONE", ""); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}
	cfg.Location = loc

	switch cfg.DB.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	if cfg.IsProduction() {
		if cfg.JWT.Secret == "" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.ExposeIssuedCodes = false
	} else if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

// IsProduction checks if the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetBoolEnv returns a bool environment variable or a default value.
func GetBoolEnv(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
