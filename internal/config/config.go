package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Server    ServerConfig
	RateLimit RateLimitConfig
	Sources   SourcesConfig
	Log       LogConfig
	DevMode   bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds the asset to device map location. An empty Addr
// disables device correlation.
type RedisConfig struct {
	Addr         string
	Password     string //nolint:gosec // G117: Redis connection config
	DB           int
	DeviceMapKey string
}

// JWTConfig holds the secret used to verify caller tokens.
type JWTConfig struct {
	Secret string //nolint:gosec // G117: JWT signing secret config
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

type RateLimitConfig struct {
	TenantRPS   float64
	TenantBurst int
	IPRPS       float64
	IPBurst     int
}

// SourcesConfig tunes retries and circuit breaking around source reads.
type SourcesConfig struct {
	Attempts         int
	FailureThreshold int
	OpenTimeout      time.Duration
}

type LogConfig struct {
	Level  zerolog.Level
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// the JWT secret and DB password must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("ORDERFACTS_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("ORDERFACTS_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("ORDERFACTS_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("ORDERFACTS_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("ORDERFACTS_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	shutdownTimeout, err := getEnvDuration("ORDERFACTS_SERVER_SHUTDOWN_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tenantRPS, err := getEnvFloat("ORDERFACTS_RATE_LIMIT_RPS", 50)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	tenantBurst, err := getEnvInt("ORDERFACTS_RATE_LIMIT_BURST", 100)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ipRPS, err := getEnvFloat("ORDERFACTS_RATE_LIMIT_IP_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	ipBurst, err := getEnvInt("ORDERFACTS_RATE_LIMIT_IP_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	attempts, err := getEnvInt("ORDERFACTS_SOURCE_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	failureThreshold, err := getEnvInt("ORDERFACTS_SOURCE_FAILURE_THRESHOLD", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	openTimeout, err := getEnvDuration("ORDERFACTS_SOURCE_OPEN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	devMode, err := getEnvBool("ORDERFACTS_DEV_MODE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	logLevel, err := zerolog.ParseLevel(getEnv("ORDERFACTS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing ORDERFACTS_LOG_LEVEL: %w", err)
	}

	logFormat := "json"
	if devMode {
		logFormat = "text"
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("ORDERFACTS_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("ORDERFACTS_DB_USER", "orderfacts"),
			Password: getEnv("ORDERFACTS_DB_PASSWORD", ""),
			DBName:   getEnv("ORDERFACTS_DB_NAME", "orders"),
			SSLMode:  getEnv("ORDERFACTS_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:         getEnv("ORDERFACTS_REDIS_ADDR", ""),
			Password:     getEnv("ORDERFACTS_REDIS_PASSWORD", ""),
			DB:           redisDB,
			DeviceMapKey: getEnv("ORDERFACTS_REDIS_DEVICE_MAP_KEY", "asset_device"),
		},
		JWT: JWTConfig{
			Secret: getEnv("ORDERFACTS_JWT_SECRET", ""),
		},
		Server: ServerConfig{
			Addr:            getEnv("ORDERFACTS_SERVER_ADDR", ":8080"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CORSOrigins:     getEnvList("ORDERFACTS_CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		RateLimit: RateLimitConfig{
			TenantRPS:   tenantRPS,
			TenantBurst: tenantBurst,
			IPRPS:       ipRPS,
			IPBurst:     ipBurst,
		},
		Sources: SourcesConfig{
			Attempts:         attempts,
			FailureThreshold: failureThreshold,
			OpenTimeout:      openTimeout,
		},
		Log: LogConfig{
			Level:  logLevel,
			Format: getEnv("ORDERFACTS_LOG_FORMAT", logFormat),
		},
		DevMode: devMode,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("ORDERFACTS_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("ORDERFACTS_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.DevMode {
		log.Warn().Msg("ORDERFACTS_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("ORDERFACTS_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("ORDERFACTS_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Redis.Addr != "" && c.Redis.DeviceMapKey == "" {
		return errors.New("ORDERFACTS_REDIS_DEVICE_MAP_KEY must not be empty when Redis is enabled")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("ORDERFACTS_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("ORDERFACTS_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("ORDERFACTS_SERVER_SHUTDOWN_TIMEOUT must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.RateLimit.TenantRPS <= 0 || c.RateLimit.TenantBurst < 1 {
		return fmt.Errorf("ORDERFACTS_RATE_LIMIT_RPS and ORDERFACTS_RATE_LIMIT_BURST must be positive, got %g/%d",
			c.RateLimit.TenantRPS, c.RateLimit.TenantBurst)
	}
	if c.RateLimit.IPRPS <= 0 || c.RateLimit.IPBurst < 1 {
		return fmt.Errorf("ORDERFACTS_RATE_LIMIT_IP_RPS and ORDERFACTS_RATE_LIMIT_IP_BURST must be positive, got %g/%d",
			c.RateLimit.IPRPS, c.RateLimit.IPBurst)
	}
	if c.Sources.Attempts < 1 {
		return fmt.Errorf("ORDERFACTS_SOURCE_ATTEMPTS must be >= 1, got %d", c.Sources.Attempts)
	}
	if c.Sources.FailureThreshold < 1 {
		return fmt.Errorf("ORDERFACTS_SOURCE_FAILURE_THRESHOLD must be >= 1, got %d", c.Sources.FailureThreshold)
	}
	if c.Sources.OpenTimeout <= 0 {
		return fmt.Errorf("ORDERFACTS_SOURCE_OPEN_TIMEOUT must be positive, got %s", c.Sources.OpenTimeout)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("ORDERFACTS_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
