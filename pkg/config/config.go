package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Notifier drivers.
const (
	NotifierHTTP  = "http"
	NotifierKafka = "kafka"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Remote     RemoteConfig
	Notifier   NotifierConfig
	FactsCache FactsCacheConfig
	Redelivery RedeliveryConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig verifies tokens minted by the identity service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RemoteConfig points at the collaborator services queried for course and candidate facts.
type RemoteConfig struct {
	CoursesURL       string
	StaffingURL      string
	NotificationsURL string
	InternalKey      string
	Timeout          time.Duration
	Retries          int
	FanOut           int
}

// NotifierConfig selects how status-change notifications leave the service.
type NotifierConfig struct {
	Driver       string
	KafkaBrokers []string
	KafkaTopic   string
}

// FactsCacheConfig governs Redis caching of ratings and experience lookups.
type FactsCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// RedeliveryConfig controls background retries of notifications that failed after a status write.
type RedeliveryConfig struct {
	Enabled bool
	Workers int
	Retries int
	Delay   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	fanOut := v.GetInt("REMOTE_FANOUT")
	if fanOut <= 0 {
		fanOut = 1
	}
	cfg.Remote = RemoteConfig{
		CoursesURL:       strings.TrimRight(v.GetString("COURSES_SERVICE_URL"), "/"),
		StaffingURL:      strings.TrimRight(v.GetString("STAFFING_SERVICE_URL"), "/"),
		NotificationsURL: strings.TrimRight(v.GetString("NOTIFICATIONS_SERVICE_URL"), "/"),
		InternalKey:      v.GetString("INTERNAL_SERVICE_KEY"),
		Timeout:          parseDuration(v.GetString("REMOTE_TIMEOUT"), 3*time.Second),
		Retries:          v.GetInt("REMOTE_RETRIES"),
		FanOut:           fanOut,
	}

	driver := strings.ToLower(strings.TrimSpace(v.GetString("NOTIFIER_DRIVER")))
	if driver != NotifierKafka {
		driver = NotifierHTTP
	}
	cfg.Notifier = NotifierConfig{
		Driver:       driver,
		KafkaBrokers: splitAndTrim(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_STATUS_TOPIC"),
	}

	cfg.FactsCache = FactsCacheConfig{
		Enabled: v.GetBool("ENABLE_FACTS_CACHE"),
		TTL:     parseDuration(v.GetString("FACTS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Redelivery = RedeliveryConfig{
		Enabled: v.GetBool("ENABLE_NOTIFICATION_REDELIVERY"),
		Workers: v.GetInt("REDELIVERY_WORKERS"),
		Retries: v.GetInt("REDELIVERY_RETRIES"),
		Delay:   parseDuration(v.GetString("REDELIVERY_DELAY"), 5*time.Second),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ta_hiring")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("COURSES_SERVICE_URL", "http://localhost:8082")
	v.SetDefault("STAFFING_SERVICE_URL", "http://localhost:8083")
	v.SetDefault("NOTIFICATIONS_SERVICE_URL", "http://localhost:8084")
	v.SetDefault("INTERNAL_SERVICE_KEY", "")
	v.SetDefault("REMOTE_TIMEOUT", "3s")
	v.SetDefault("REMOTE_RETRIES", 1)
	v.SetDefault("REMOTE_FANOUT", 4)

	v.SetDefault("NOTIFIER_DRIVER", NotifierHTTP)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_STATUS_TOPIC", "ta.application.status")

	v.SetDefault("ENABLE_FACTS_CACHE", false)
	v.SetDefault("FACTS_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_NOTIFICATION_REDELIVERY", false)
	v.SetDefault("REDELIVERY_WORKERS", 1)
	v.SetDefault("REDELIVERY_RETRIES", 5)
	v.SetDefault("REDELIVERY_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
