package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/modhub/internal/application/auth"
	"github.com/caarlos0/env/v10"
)

// Storage backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for modhub
type Config struct {
	// Server configuration
	HTTPPort int    `env:"PORT" envDefault:"8080"`
	GRPCPort int    `env:"GRPC_PORT" envDefault:"9090"` // 0 disables the gRPC health server
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Catalog storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"memory"`
	SeedSampleData bool   `env:"SEED_SAMPLE_DATA" envDefault:"true"`

	// Redis configuration, used by the redis backend
	Redis RedisConfig

	// Uploads and static pages
	Public PublicConfig

	// Admin gate credentials
	Admin AdminConfig

	// External catalog
	GameBanana GameBananaConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password  string `env:"REDIS_PASS"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"modhub"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// PublicConfig holds the public directory layout
type PublicConfig struct {
	Dir            string `env:"PUBLIC_DIR" envDefault:"public"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"67108864"` // 64 MiB
}

// AdminConfig holds the single admin credential pair
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" envDefault:"admin"`
	Password string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
}

// GameBananaConfig holds external catalog settings
type GameBananaConfig struct {
	BaseURL           string        `env:"GAMEBANANA_BASE_URL" envDefault:"https://api.gamebanana.com"`
	GameID            int           `env:"GAMEBANANA_GAME_ID" envDefault:"3827"`
	RequestsPerSecond float64       `env:"GAMEBANANA_REQUESTS_PER_SECOND" envDefault:"5"`
	Burst             int           `env:"GAMEBANANA_BURST" envDefault:"5"`
	Timeout           time.Duration `env:"GAMEBANANA_TIMEOUT" envDefault:"15s"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ShutdownTimeout     time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"10s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("HTTP and gRPC ports must differ")
	}

	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s (must be memory or redis)", c.StorageBackend)
	}

	if c.Public.Dir == "" {
		return fmt.Errorf("public directory is required")
	}
	if c.Public.MaxUploadBytes < 1 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return fmt.Errorf("admin username and password are required")
	}
	// The gate only accepts tokens whose text carries the marker
	if !strings.Contains(c.Admin.Username, auth.TokenMarker) {
		return fmt.Errorf("admin username must contain %q", auth.TokenMarker)
	}

	if c.GameBanana.BaseURL == "" {
		return fmt.Errorf("GameBanana base URL is required")
	}
	if c.GameBanana.RequestsPerSecond <= 0 || c.GameBanana.Burst < 1 {
		return fmt.Errorf("GameBanana rate limit must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
