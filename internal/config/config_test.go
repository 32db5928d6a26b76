package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "ORDERFACTS_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "ORDERFACTS_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "ORDERFACTS_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
		{name: "preserves whitespace", key: "ORDERFACTS_TEST_GETENV_WS", setVal: strPtr("  spaced  "), fallback: "x", want: "  spaced  "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ORDERFACTS_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses valid int", key: "ORDERFACTS_TEST_INT_VALID", setVal: strPtr("8080"), fallback: 0, want: 8080},
		{name: "parses negative int", key: "ORDERFACTS_TEST_INT_NEG", setVal: strPtr("-1"), fallback: 0, want: -1},
		{name: "parses zero", key: "ORDERFACTS_TEST_INT_ZERO", setVal: strPtr("0"), fallback: 99, want: 0},
		{name: "returns fallback for empty string", key: "ORDERFACTS_TEST_INT_EMPTY", setVal: strPtr(""), fallback: 25, want: 25},
		{name: "errors on non-numeric", key: "ORDERFACTS_TEST_INT_NAN", setVal: strPtr("abc"), fallback: 0, wantErr: true},
		{name: "errors on float", key: "ORDERFACTS_TEST_INT_FLOAT", setVal: strPtr("3.14"), fallback: 0, wantErr: true},
		{name: "errors on hex", key: "ORDERFACTS_TEST_INT_HEX", setVal: strPtr("0xFF"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback bool
		want     bool
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ORDERFACTS_TEST_BOOL_UNSET", setVal: nil, fallback: false, want: false},
		{name: "fallback true when unset", key: "ORDERFACTS_TEST_BOOL_UNSETTRUE", setVal: nil, fallback: true, want: true},
		{name: "parses true", key: "ORDERFACTS_TEST_BOOL_TRUE", setVal: strPtr("true"), fallback: false, want: true},
		{name: "parses false", key: "ORDERFACTS_TEST_BOOL_FALSE", setVal: strPtr("false"), fallback: true, want: false},
		{name: "parses 1", key: "ORDERFACTS_TEST_BOOL_ONE", setVal: strPtr("1"), fallback: false, want: true},
		{name: "parses 0", key: "ORDERFACTS_TEST_BOOL_ZERO", setVal: strPtr("0"), fallback: true, want: false},
		{name: "parses TRUE uppercase", key: "ORDERFACTS_TEST_BOOL_UPPER", setVal: strPtr("TRUE"), fallback: false, want: true},
		{name: "parses t", key: "ORDERFACTS_TEST_BOOL_T", setVal: strPtr("t"), fallback: false, want: true},
		{name: "errors on invalid", key: "ORDERFACTS_TEST_BOOL_INV", setVal: strPtr("yes"), fallback: false, wantErr: true},
		{name: "errors on numeric non-bool", key: "ORDERFACTS_TEST_BOOL_NUM", setVal: strPtr("2"), fallback: false, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvBool(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback time.Duration
		want     time.Duration
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ORDERFACTS_TEST_DUR_UNSET", setVal: nil, fallback: 5 * time.Second, want: 5 * time.Second},
		{name: "parses seconds", key: "ORDERFACTS_TEST_DUR_SEC", setVal: strPtr("30s"), fallback: 0, want: 30 * time.Second},
		{name: "parses minutes", key: "ORDERFACTS_TEST_DUR_MIN", setVal: strPtr("15m"), fallback: 0, want: 15 * time.Minute},
		{name: "parses hours", key: "ORDERFACTS_TEST_DUR_HR", setVal: strPtr("2h"), fallback: 0, want: 2 * time.Hour},
		{name: "parses composite", key: "ORDERFACTS_TEST_DUR_COMP", setVal: strPtr("1h30m"), fallback: 0, want: 90 * time.Minute},
		{name: "parses nanosecond", key: "ORDERFACTS_TEST_DUR_NS", setVal: strPtr("1ns"), fallback: 0, want: time.Nanosecond},
		{name: "parses zero", key: "ORDERFACTS_TEST_DUR_ZERO", setVal: strPtr("0s"), fallback: 5 * time.Second, want: 0},
		{name: "errors on invalid", key: "ORDERFACTS_TEST_DUR_INV", setVal: strPtr("notaduration"), fallback: 0, wantErr: true},
		{name: "errors on bare number", key: "ORDERFACTS_TEST_DUR_BARE", setVal: strPtr("30"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvDuration(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback float64
		want     float64
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "ORDERFACTS_TEST_FLOAT_UNSET", setVal: nil, fallback: 2.5, want: 2.5},
		{name: "parses integer", key: "ORDERFACTS_TEST_FLOAT_INT", setVal: strPtr("50"), fallback: 0, want: 50},
		{name: "parses fraction", key: "ORDERFACTS_TEST_FLOAT_FRAC", setVal: strPtr("0.5"), fallback: 0, want: 0.5},
		{name: "errors on non-numeric", key: "ORDERFACTS_TEST_FLOAT_NAN", setVal: strPtr("fast"), fallback: 0, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvFloat(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.key)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() error cases
// ---------------------------------------------------------------------------

const testSecret = "test-secret-that-is-at-least-32ch"

func TestLoad_MissingJWTSecret(t *testing.T) {
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ORDERFACTS_JWT_SECRET")
}

func TestLoad_InvalidEnvVars(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
	}{
		{name: "DB_PORT not a number", envKey: "ORDERFACTS_DB_PORT", envVal: "abc"},
		{name: "DB_PORT zero", envKey: "ORDERFACTS_DB_PORT", envVal: "0"},
		{name: "DB_PORT too high", envKey: "ORDERFACTS_DB_PORT", envVal: "65536"},
		{name: "DB_MAX_CONNS zero", envKey: "ORDERFACTS_DB_MAX_CONNS", envVal: "0"},
		{name: "DB_MAX_CONNS not a number", envKey: "ORDERFACTS_DB_MAX_CONNS", envVal: "many"},
		{name: "REDIS_DB not a number", envKey: "ORDERFACTS_REDIS_DB", envVal: "abc"},
		{name: "SERVER_READ_TIMEOUT invalid", envKey: "ORDERFACTS_SERVER_READ_TIMEOUT", envVal: "notduration"},
		{name: "SERVER_WRITE_TIMEOUT zero", envKey: "ORDERFACTS_SERVER_WRITE_TIMEOUT", envVal: "0s"},
		{name: "SERVER_SHUTDOWN_TIMEOUT negative", envKey: "ORDERFACTS_SERVER_SHUTDOWN_TIMEOUT", envVal: "-1s"},
		{name: "RATE_LIMIT_RPS zero", envKey: "ORDERFACTS_RATE_LIMIT_RPS", envVal: "0"},
		{name: "RATE_LIMIT_RPS not a number", envKey: "ORDERFACTS_RATE_LIMIT_RPS", envVal: "fast"},
		{name: "RATE_LIMIT_BURST zero", envKey: "ORDERFACTS_RATE_LIMIT_BURST", envVal: "0"},
		{name: "RATE_LIMIT_IP_RPS negative", envKey: "ORDERFACTS_RATE_LIMIT_IP_RPS", envVal: "-1"},
		{name: "SOURCE_ATTEMPTS zero", envKey: "ORDERFACTS_SOURCE_ATTEMPTS", envVal: "0"},
		{name: "SOURCE_FAILURE_THRESHOLD zero", envKey: "ORDERFACTS_SOURCE_FAILURE_THRESHOLD", envVal: "0"},
		{name: "SOURCE_OPEN_TIMEOUT invalid", envKey: "ORDERFACTS_SOURCE_OPEN_TIMEOUT", envVal: "soon"},
		{name: "DEV_MODE not a bool", envKey: "ORDERFACTS_DEV_MODE", envVal: "yes"},
		{name: "LOG_LEVEL unknown", envKey: "ORDERFACTS_LOG_LEVEL", envVal: "loud"},
		{name: "LOG_FORMAT unknown", envKey: "ORDERFACTS_LOG_FORMAT", envVal: "xml"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ORDERFACTS_JWT_SECRET", testSecret)
			t.Setenv(tc.envKey, tc.envVal)

			cfg, err := Load()
			require.Error(t, err, "expected error for %s=%q", tc.envKey, tc.envVal)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tc.envKey)
		})
	}
}

// ---------------------------------------------------------------------------
// Load() happy paths
// ---------------------------------------------------------------------------

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ORDERFACTS_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "orderfacts", cfg.Database.User)
	assert.Equal(t, "orders", cfg.Database.DBName)
	assert.Equal(t, 10, cfg.Database.MaxConns)

	assert.Empty(t, cfg.Redis.Addr, "device correlation is off by default")
	assert.Equal(t, "asset_device", cfg.Redis.DeviceMapKey)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)

	assert.InDelta(t, 50.0, cfg.RateLimit.TenantRPS, 1e-9)
	assert.Equal(t, 100, cfg.RateLimit.TenantBurst)
	assert.InDelta(t, 20.0, cfg.RateLimit.IPRPS, 1e-9)
	assert.Equal(t, 40, cfg.RateLimit.IPBurst)

	assert.Equal(t, 3, cfg.Sources.Attempts)
	assert.Equal(t, 5, cfg.Sources.FailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.Sources.OpenTimeout)

	assert.Equal(t, zerolog.InfoLevel, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.DevMode)
}

func TestLoad_DevModeDefaultsToTextLogs(t *testing.T) {
	t.Setenv("ORDERFACTS_JWT_SECRET", testSecret)
	t.Setenv("ORDERFACTS_DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)

	t.Setenv("ORDERFACTS_LOG_FORMAT", "json")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format, "explicit format wins")
}

func TestLoad_AllCustomValues(t *testing.T) {
	envs := map[string]string{
		"ORDERFACTS_DB_HOST":                  "db.prod.internal",
		"ORDERFACTS_DB_PORT":                  "5433",
		"ORDERFACTS_DB_USER":                  "facts_ro",
		"ORDERFACTS_DB_PASSWORD":              "s3cret!",
		"ORDERFACTS_DB_NAME":                  "orders_prod",
		"ORDERFACTS_DB_SSLMODE":               "require",
		"ORDERFACTS_DB_MAX_CONNS":             "40",
		"ORDERFACTS_REDIS_ADDR":               "redis.prod:6380",
		"ORDERFACTS_REDIS_PASSWORD":           "redis-pass",
		"ORDERFACTS_REDIS_DB":                 "3",
		"ORDERFACTS_REDIS_DEVICE_MAP_KEY":     "iot:bindings",
		"ORDERFACTS_JWT_SECRET":               "prod-jwt-secret-256-bits-long!!!",
		"ORDERFACTS_SERVER_ADDR":              ":9090",
		"ORDERFACTS_SERVER_READ_TIMEOUT":      "5s",
		"ORDERFACTS_SERVER_WRITE_TIMEOUT":     "15s",
		"ORDERFACTS_SERVER_SHUTDOWN_TIMEOUT":  "20s",
		"ORDERFACTS_CORS_ORIGINS":             "https://ops.example.com, https://admin.example.com",
		"ORDERFACTS_RATE_LIMIT_RPS":           "12.5",
		"ORDERFACTS_RATE_LIMIT_BURST":         "25",
		"ORDERFACTS_RATE_LIMIT_IP_RPS":        "4",
		"ORDERFACTS_RATE_LIMIT_IP_BURST":      "8",
		"ORDERFACTS_SOURCE_ATTEMPTS":          "5",
		"ORDERFACTS_SOURCE_FAILURE_THRESHOLD": "10",
		"ORDERFACTS_SOURCE_OPEN_TIMEOUT":      "1m",
		"ORDERFACTS_LOG_LEVEL":                "debug",
		"ORDERFACTS_LOG_FORMAT":               "text",
	}

	for k, v := range envs {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "db.prod.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "facts_ro", cfg.Database.User)
	assert.Equal(t, "s3cret!", cfg.Database.Password)
	assert.Equal(t, "orders_prod", cfg.Database.DBName)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 40, cfg.Database.MaxConns)

	assert.Equal(t, "redis.prod:6380", cfg.Redis.Addr)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "iot:bindings", cfg.Redis.DeviceMapKey)

	assert.Equal(t, "prod-jwt-secret-256-bits-long!!!", cfg.JWT.Secret)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.Server.CORSOrigins)

	assert.InDelta(t, 12.5, cfg.RateLimit.TenantRPS, 1e-9)
	assert.Equal(t, 25, cfg.RateLimit.TenantBurst)
	assert.InDelta(t, 4.0, cfg.RateLimit.IPRPS, 1e-9)
	assert.Equal(t, 8, cfg.RateLimit.IPBurst)

	assert.Equal(t, 5, cfg.Sources.Attempts)
	assert.Equal(t, 10, cfg.Sources.FailureThreshold)
	assert.Equal(t, time.Minute, cfg.Sources.OpenTimeout)

	assert.Equal(t, zerolog.DebugLevel, cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

// ---------------------------------------------------------------------------
// DSN() output format
// ---------------------------------------------------------------------------

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "default dev values",
			cfg: DatabaseConfig{
				Host: "localhost", Port: 5432, User: "orderfacts",
				Password: "", DBName: "orders", SSLMode: "disable",
			},
			want: "host=localhost port=5432 user=orderfacts password= dbname=orders sslmode=disable",
		},
		{
			name: "special characters in password",
			cfg: DatabaseConfig{
				Host: "h", Port: 1, User: "u",
				Password: "p=a&b c", DBName: "d", SSLMode: "s",
			},
			want: "host=h port=1 user=u password=p=a&b c dbname=d sslmode=s",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.cfg.DSN())
		})
	}
}

// ---------------------------------------------------------------------------
// validate() direct tests
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	validBase := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Port: 5432, MaxConns: 10, SSLMode: "require"},
			JWT:       JWTConfig{Secret: testSecret},
			Server:    ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, ShutdownTimeout: time.Second},
			RateLimit: RateLimitConfig{TenantRPS: 1, TenantBurst: 1, IPRPS: 1, IPBurst: 1},
			Sources:   SourcesConfig{Attempts: 1, FailureThreshold: 1, OpenTimeout: time.Second},
			Log:       LogConfig{Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config passes", mutate: func(*Config) {}},
		{name: "empty JWT secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "ORDERFACTS_JWT_SECRET"},
		{name: "JWT secret too short", mutate: func(c *Config) { c.JWT.Secret = "only-31-characters-long-secret!" }, wantErr: "ORDERFACTS_JWT_SECRET"},
		{name: "JWT secret exactly 32 chars", mutate: func(c *Config) { c.JWT.Secret = "exactly-32-characters-long-sec!!" }},
		{name: "port 0", mutate: func(c *Config) { c.Database.Port = 0 }, wantErr: "ORDERFACTS_DB_PORT"},
		{name: "port 65535", mutate: func(c *Config) { c.Database.Port = 65535 }},
		{name: "MaxConns 0", mutate: func(c *Config) { c.Database.MaxConns = 0 }, wantErr: "ORDERFACTS_DB_MAX_CONNS"},
		{name: "redis without map key", mutate: func(c *Config) { c.Redis.Addr = "localhost:6379" }, wantErr: "ORDERFACTS_REDIS_DEVICE_MAP_KEY"},
		{name: "map key unused without redis", mutate: func(c *Config) { c.Redis.DeviceMapKey = "" }},
		{name: "ReadTimeout 0", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: "ORDERFACTS_SERVER_READ_TIMEOUT"},
		{name: "ShutdownTimeout 0", mutate: func(c *Config) { c.Server.ShutdownTimeout = 0 }, wantErr: "ORDERFACTS_SERVER_SHUTDOWN_TIMEOUT"},
		{name: "tenant burst 0", mutate: func(c *Config) { c.RateLimit.TenantBurst = 0 }, wantErr: "ORDERFACTS_RATE_LIMIT_BURST"},
		{name: "ip rps 0", mutate: func(c *Config) { c.RateLimit.IPRPS = 0 }, wantErr: "ORDERFACTS_RATE_LIMIT_IP_RPS"},
		{name: "attempts 0", mutate: func(c *Config) { c.Sources.Attempts = 0 }, wantErr: "ORDERFACTS_SOURCE_ATTEMPTS"},
		{name: "open timeout 0", mutate: func(c *Config) { c.Sources.OpenTimeout = 0 }, wantErr: "ORDERFACTS_SOURCE_OPEN_TIMEOUT"},
		{name: "log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "ORDERFACTS_LOG_FORMAT"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := validBase()
			tc.mutate(c)
			err := c.validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Test helper
// ---------------------------------------------------------------------------

func strPtr(s string) *string {
	return &s
}
