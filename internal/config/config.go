package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"abtest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Share     ShareConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// in-memory share store.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	Migrate      bool
}

// EngineConfig holds statistical engine settings
type EngineConfig struct {
	Workers int
	Seed    uint64
}

// ShareConfig bounds shared-state payloads
type ShareConfig struct {
	MaxInputBytes int64
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := getEnvUint64OrDefault("ABTEST_SEED", 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load engine configuration")
	}

	config := &Config{
		Server:   *loadServerConfig(),
		Database: *loadDatabaseConfig(),
		Engine: EngineConfig{
			Workers: getEnvIntOrDefault("ABTEST_WORKERS", runtime.GOMAXPROCS(0)),
			Seed:    seed,
		},
		Share: ShareConfig{
			MaxInputBytes: int64(getEnvIntOrDefault("ABTEST_MAX_INPUT", 1<<20)),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		ReadTimeout:     getEnvDurationOrDefault("READ_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:          getEnvOrDefault("DATABASE_URL", ""),
		MaxOpenConns: getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		Migrate:      getEnvBoolOrDefault("DB_MIGRATE", true),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Engine.Workers < 1 {
		return errors.ConfigInvalid("ABTEST_WORKERS must be at least 1")
	}
	if config.Share.MaxInputBytes < 1 {
		return errors.ConfigInvalid("ABTEST_MAX_INPUT must be positive")
	}
	if config.Profiling.Enabled && config.Profiling.Port == config.Server.Port {
		return errors.ConfigInvalid("PPROF_PORT must differ from PORT")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvUint64OrDefault(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be a non-negative integer")
	}
	return parsed, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
