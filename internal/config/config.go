package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/timing"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// Redis settings
	RedisURL          string
	RedisPoolSize     int
	RedisMinIdle      int
	RedisDialTimeout  time.Duration
	RedisReadTimeout  time.Duration
	RedisWriteTimeout time.Duration
	RedisPoolTimeout  time.Duration

	// Shutdown settings
	ShutdownTimeout time.Duration

	// Security settings
	RequireHTTPS bool // enforce HTTPS with HSTS header (disable with NO_HTTPS=1)

	// Unlock settings, validated by UnlockConfig
	StealthCode    string
	DuressCode     string
	WindowMin      time.Duration
	WindowMax      time.Duration
	IdleReset      time.Duration
	CredentialKeys []string

	// Credential store settings
	StoreBackend string
	StorePath    string
	DeviceKey    string

	// Backend collaborator
	BackendURL    string
	NotifyTimeout time.Duration

	// Logging
	LogLevel      string
	DiagnosticLog string // empty discards diagnostics
}

// DefaultConfig returns a Config with sensible defaults. There are no
// default codes: a built-in code would be a published secret.
func DefaultConfig() Config {
	return Config{
		Port:              "8080",
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB

		RedisURL:          "redis://localhost:6379/0",
		RedisPoolSize:     10,
		RedisMinIdle:      2,
		RedisDialTimeout:  5 * time.Second,
		RedisReadTimeout:  3 * time.Second,
		RedisWriteTimeout: 3 * time.Second,
		RedisPoolTimeout:  4 * time.Second,

		ShutdownTimeout: 5 * time.Second,

		RequireHTTPS: true, // secure default: enforce HTTPS

		WindowMin:      domain.DefaultWindowMin,
		WindowMax:      domain.DefaultWindowMax,
		IdleReset:      domain.DefaultIdleReset,
		CredentialKeys: domain.DefaultCredentialKeys(),

		StoreBackend: BackendSQLite,
		StorePath:    "stealthpad.db",

		NotifyTimeout: domain.DefaultNotifyTimeout,

		LogLevel: "info",
	}
}

// Load reads the optional CONFIG_FILE, then environment variables, and
// validates the result. Unlock codes are checked by UnlockConfig.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	// Server settings
	if port := os.Getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("PORT must be a valid number: %w", err)
		}
		cfg.Port = port
	}

	// Redis settings
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.RedisURL = redisURL
	}

	if poolSize := os.Getenv("REDIS_POOL_SIZE"); poolSize != "" {
		size, err := strconv.Atoi(poolSize)
		if err != nil || size < 1 {
			return errors.New("REDIS_POOL_SIZE must be a positive integer")
		}
		cfg.RedisPoolSize = size
	}

	if minIdle := os.Getenv("REDIS_MIN_IDLE"); minIdle != "" {
		idle, err := strconv.Atoi(minIdle)
		if err != nil || idle < 0 {
			return errors.New("REDIS_MIN_IDLE must be a non-negative integer")
		}
		cfg.RedisMinIdle = idle
	}

	// Shutdown settings
	if timeout := os.Getenv("SHUTDOWN_TIMEOUT"); timeout != "" {
		dur, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf(
				"SHUTDOWN_TIMEOUT must be a valid duration: %w", err)
		}
		cfg.ShutdownTimeout = dur
	}

	// Security settings
	if noHTTPS := os.Getenv("NO_HTTPS"); noHTTPS == "1" || noHTTPS == "true" {
		cfg.RequireHTTPS = false
	}

	// Unlock settings
	if code := os.Getenv("STEALTH_CODE"); code != "" {
		cfg.StealthCode = code
	}
	if code := os.Getenv("DURESS_CODE"); code != "" {
		cfg.DuressCode = code
	}
	if v := os.Getenv("TIMING_WINDOW_MIN_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return errors.New("TIMING_WINDOW_MIN_MS must be a non-negative integer")
		}
		cfg.WindowMin = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("TIMING_WINDOW_MAX_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return errors.New("TIMING_WINDOW_MAX_MS must be a non-negative integer")
		}
		cfg.WindowMax = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("INPUT_IDLE_RESET"); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("INPUT_IDLE_RESET must be a valid duration: %w", err)
		}
		cfg.IdleReset = dur
	}
	if v := os.Getenv("CREDENTIAL_KEYS"); v != "" {
		cfg.CredentialKeys = splitList(v)
	}

	// Credential store settings
	if v := os.Getenv("STORE_BACKEND"); v != "" {
		cfg.StoreBackend = strings.ToLower(v)
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		cfg.StorePath = v
	}
	if v := os.Getenv("STORE_DEVICE_KEY"); v != "" {
		cfg.DeviceKey = v
	}

	// Backend collaborator
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("NOTIFY_TIMEOUT"); v != "" {
		dur, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NOTIFY_TIMEOUT must be a valid duration: %w", err)
		}
		cfg.NotifyTimeout = dur
	}

	// Logging
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DIAGNOSTIC_LOG"); v != "" {
		cfg.DiagnosticLog = v
	}
	return nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of sqlite, redis, memory: got %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendSQLite && c.StorePath == "" {
		return errors.New("STORE_PATH is required for the sqlite backend")
	}
	if c.NotifyTimeout <= 0 {
		return errors.New("NOTIFY_TIMEOUT must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// ListenAddr returns the address string for the HTTP server.
func (c Config) ListenAddr() string {
	return ":" + c.Port
}

// Window returns the shared timing window.
func (c Config) Window() timing.Window {
	return timing.Window{Min: c.WindowMin, Max: c.WindowMax}
}

// UnlockConfig validates the code pair and timing settings. Processes that
// gate the keypad must refuse to start when it fails.
func (c Config) UnlockConfig() (UnlockConfig, error) {
	return NewUnlockConfig(c.StealthCode, c.DuressCode, c.Window(), c.IdleReset, c.CredentialKeys)
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
