package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// AppConfig holds every runtime setting of the API server.
type AppConfig struct {
	Port      string `validate:"required,numeric"`
	APIPrefix string `validate:"required"`
	JWTSecret string `validate:"required,min=8"`

	DB DatabaseConfig

	LogFile       string `validate:"required"`
	LogLevel      string `validate:"required,oneof=trace debug info warn error"`
	LogMaxSizeMB  int    `validate:"gte=1"`
	LogMaxBackups int    `validate:"gte=0"`

	CORSOrigins []string

	DefaultCountry   string  `validate:"required"`
	DefaultBasePrice float64 `validate:"gte=0"`

	NoShowInterval time.Duration `validate:"gt=0"`
	NoShowGrace    time.Duration `validate:"gt=0"`
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
	SSLMode  string `validate:"required,oneof=disable allow prefer require verify-ca verify-full"`
	TimeZone string `validate:"required"`
}

// DSN renders the connection string understood by the postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// Load reads .env (if present), then the environment, and validates the result.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found – relying on env vars")
	}

	cfg := &AppConfig{
		Port:      getEnv("PORT", "8080"),
		APIPrefix: strings.Trim(getEnv("API_PREFIX", "api/v1"), "/"),
		JWTSecret: getEnv("JWT_SECRET", ""),
		DB: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "transroute"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		LogFile:          getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogMaxSizeMB:     getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups:    getEnvInt("LOG_MAX_BACKUPS", 7),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "")),
		DefaultCountry:   getEnv("DEFAULT_COUNTRY", "Mexico"),
		DefaultBasePrice: getEnvFloat("DEFAULT_BASE_PRICE", 100),
		NoShowInterval:   getEnvDuration("NO_SHOW_INTERVAL", time.Hour),
		NoShowGrace:      getEnvDuration("NO_SHOW_GRACE", 5*time.Hour),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logrus.WithField("key", key).Warn("ignoring malformed duration")
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
