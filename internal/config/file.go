package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk layout. Durations are strings such as "3s".
type fileConfig struct {
	Port         string `toml:"port" yaml:"port"`
	RedisURL     string `toml:"redis_url" yaml:"redis_url"`
	RequireHTTPS *bool  `toml:"require_https" yaml:"require_https"`

	Unlock struct {
		StealthCode    string   `toml:"stealth_code" yaml:"stealth_code"`
		DuressCode     string   `toml:"duress_code" yaml:"duress_code"`
		WindowMinMs    *int     `toml:"window_min_ms" yaml:"window_min_ms"`
		WindowMaxMs    *int     `toml:"window_max_ms" yaml:"window_max_ms"`
		IdleReset      string   `toml:"idle_reset" yaml:"idle_reset"`
		CredentialKeys []string `toml:"credential_keys" yaml:"credential_keys"`
	} `toml:"unlock" yaml:"unlock"`

	Store struct {
		Backend   string `toml:"backend" yaml:"backend"`
		Path      string `toml:"path" yaml:"path"`
		DeviceKey string `toml:"device_key" yaml:"device_key"`
	} `toml:"store" yaml:"store"`

	Notify struct {
		BackendURL string `toml:"backend_url" yaml:"backend_url"`
		Timeout    string `toml:"timeout" yaml:"timeout"`
	} `toml:"notify" yaml:"notify"`

	Logging struct {
		Level      string `toml:"level" yaml:"level"`
		Diagnostic string `toml:"diagnostic" yaml:"diagnostic"`
	} `toml:"logging" yaml:"logging"`
}

// loadFile decodes path by extension and overlays it onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if err := autoDetectAndParse(data, &fc); err != nil {
			return err
		}
	}
	return fc.apply(cfg)
}

func autoDetectAndParse(data []byte, fc *fileConfig) error {
	if _, err := toml.Decode(string(data), fc); err == nil {
		return nil
	}
	*fc = fileConfig{}
	if err := yaml.Unmarshal(data, fc); err == nil {
		return nil
	}
	return errors.New("unable to parse config file (tried TOML, YAML)")
}

func (fc fileConfig) apply(cfg *Config) error {
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.RedisURL != "" {
		cfg.RedisURL = fc.RedisURL
	}
	if fc.RequireHTTPS != nil {
		cfg.RequireHTTPS = *fc.RequireHTTPS
	}

	u := fc.Unlock
	if u.StealthCode != "" {
		cfg.StealthCode = u.StealthCode
	}
	if u.DuressCode != "" {
		cfg.DuressCode = u.DuressCode
	}
	if u.WindowMinMs != nil {
		cfg.WindowMin = time.Duration(*u.WindowMinMs) * time.Millisecond
	}
	if u.WindowMaxMs != nil {
		cfg.WindowMax = time.Duration(*u.WindowMaxMs) * time.Millisecond
	}
	if u.IdleReset != "" {
		d, err := time.ParseDuration(u.IdleReset)
		if err != nil {
			return fmt.Errorf("unlock.idle_reset: %w", err)
		}
		cfg.IdleReset = d
	}
	if len(u.CredentialKeys) > 0 {
		cfg.CredentialKeys = append([]string(nil), u.CredentialKeys...)
	}

	if fc.Store.Backend != "" {
		cfg.StoreBackend = fc.Store.Backend
	}
	if fc.Store.Path != "" {
		cfg.StorePath = fc.Store.Path
	}
	if fc.Store.DeviceKey != "" {
		cfg.DeviceKey = fc.Store.DeviceKey
	}

	if fc.Notify.BackendURL != "" {
		cfg.BackendURL = fc.Notify.BackendURL
	}
	if fc.Notify.Timeout != "" {
		d, err := time.ParseDuration(fc.Notify.Timeout)
		if err != nil {
			return fmt.Errorf("notify.timeout: %w", err)
		}
		cfg.NotifyTimeout = d
	}

	if fc.Logging.Level != "" {
		cfg.LogLevel = fc.Logging.Level
	}
	if fc.Logging.Diagnostic != "" {
		cfg.DiagnosticLog = fc.Logging.Diagnostic
	}
	return nil
}
