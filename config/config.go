package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Session    SessionConfig
	CORS       CORSConfig
	Monitor    MonitorConfig
	DevBackend DevBackendConfig
	LogLevel   string
}

type ServerConfig struct {
	Port           string
	GinMode        string
	RestaurantName string
}

// BackendConfig describes the remote REST backend the console talks to.
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	OrderTypeStyle string
}

type SessionConfig struct {
	// JWTSecret verifies backend tokens when set; otherwise tokens are only
	// decoded.
	JWTSecret     string
	TTL           time.Duration
	SweepInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MonitorConfig struct {
	TableRefreshInterval time.Duration
}

// DevBackendConfig configures the stand-in backend used for local
// development and integration tests.
type DevBackendConfig struct {
	Port          string
	DBDriver      string
	DSN           string
	SeedEmail     string
	SeedPassword  string
	TokenLifetime time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", "debug"),
			RestaurantName: getEnv("RESTAURANT_NAME", "Restaurant"),
		},
		Backend: BackendConfig{
			BaseURL:        strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:9090"), "/"),
			Timeout:        getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
			OrderTypeStyle: getEnv("BACKEND_ORDER_TYPE_STYLE", "canonical"),
		},
		Session: SessionConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TTL:           getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			SweepInterval: getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Monitor: MonitorConfig{
			TableRefreshInterval: getEnvAsDuration("TABLE_REFRESH_INTERVAL", 5*time.Second),
		},
		DevBackend: DevBackendConfig{
			Port:          getEnv("DEV_BACKEND_PORT", "9090"),
			DBDriver:      getEnv("DB_DRIVER", "sqlite"),
			DSN:           getEnv("DB_DSN", "file:devbackend.db?cache=shared"),
			SeedEmail:     getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
			SeedPassword:  getEnv("SEED_ADMIN_PASSWORD", "secret123"),
			TokenLifetime: getEnvAsDuration("DEV_TOKEN_LIFETIME", 24*time.Hour),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// DevJWTSecret is the signing secret of the stand-in backend. It falls back to
// a fixed development value so the console and stand-in agree out of the box.
func (c *Config) DevJWTSecret() string {
	if c.Session.JWTSecret != "" {
		return c.Session.JWTSecret
	}
	return "dev-backend-secret"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
