package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Addr                 string
	Environment          string
	LogLevel             string
	StoreDriver          string
	DatabaseURL          string
	SQLitePath           string
	MigrationsDir        string
	RunMigrations        bool
	DBConnectTimeout     time.Duration
	RulesFile            string
	JWTSecret            string
	TokenTTL             time.Duration
	OperatorUsername     string
	OperatorPasswordHash string
	ViewerUsername       string
	ViewerPasswordHash   string
	DataEncryptionKey    string
	PayslipDir           string
	CORSOrigins          []string
	MaxBodyBytes         int64
	LoginRatePerMinute   int
	TrustForwardedFor    bool
	MetricsEnabled       bool
	ShutdownTimeout      time.Duration
}

// Load reads an optional .env file from the working directory, then the environment.
// Variables already set in the environment win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "err", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Addr:                 getEnv("APP_ADDR", ":8080"),
		Environment:          getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		SQLitePath:           getEnv("SQLITE_PATH", "data/salary.db"),
		MigrationsDir:        getEnv("MIGRATIONS_DIR", "migrations"),
		RunMigrations:        getEnvBool("RUN_MIGRATIONS", true),
		DBConnectTimeout:     getEnvDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		RulesFile:            getEnv("RULES_FILE", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		TokenTTL:             getEnvDuration("TOKEN_TTL", 12*time.Hour),
		OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		ViewerUsername:       getEnv("VIEWER_USERNAME", "viewer"),
		ViewerPasswordHash:   getEnv("VIEWER_PASSWORD_HASH", ""),
		TrustForwardedFor:    getEnvBool("TRUST_FORWARDED_FOR", false),
		DataEncryptionKey:    getEnv("DATA_ENCRYPTION_KEY", ""),
		PayslipDir:           getEnv("PAYSLIP_DIR", ""),
		CORSOrigins:          getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		LoginRatePerMinute:   getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		MetricsEnabled:       getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// DevMode reports whether requests run without authentication.
func (c Config) DevMode() bool {
	return strings.TrimSpace(c.JWTSecret) == ""
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, sqlite, postgres")
	}
	if c.Environment == "production" {
		if c.DevMode() {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" && c.PayslipDir != "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production when payslips are archived")
		}
		if c.StoreDriver == StoreMemory {
			return fmt.Errorf("STORE_DRIVER memory is not allowed in production")
		}
	}
	if !c.DevMode() && strings.TrimSpace(c.OperatorPasswordHash) == "" {
		return fmt.Errorf("OPERATOR_PASSWORD_HASH is required when JWT_SECRET is set")
	}
	if strings.TrimSpace(c.ViewerPasswordHash) != "" && strings.TrimSpace(c.ViewerUsername) == strings.TrimSpace(c.OperatorUsername) {
		return fmt.Errorf("VIEWER_USERNAME must differ from OPERATOR_USERNAME")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.LoginRatePerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be positive")
	}
	return nil
}
