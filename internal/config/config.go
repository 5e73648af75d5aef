package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/lazypower/halflife/internal/engine"
	"github.com/lazypower/halflife/internal/logging"
)

// Config holds all halflife configuration.
// Precedence: Default() < config.toml < .env < process environment.
type Config struct {
	Server   ServerConfig    `toml:"server"`
	Database DatabaseConfig  `toml:"database"`
	Model    engine.Settings `toml:"model"`
	Log      LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Bind        string   `toml:"bind"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"` // empty disables CORS
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // "text" or "json"
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Model: engine.DefaultSettings(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultPath returns the default config file path: ~/.halflife/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".halflife", "config.toml"), nil
}

// Load builds the configuration. path names a TOML file; when empty,
// HALFLIFE_CONFIG and then DefaultPath are tried. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	if path == "" {
		path = os.Getenv("HALFLIFE_CONFIG")
	}
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Config{}, err
		}
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid value.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: want text or json", c.Log.Format)
	}
	if err := c.Model.Validate(); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// loadDotEnv exports variables from a .env file without overriding ones
// already set in the environment.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("HALFLIFE_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("HALFLIFE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HALFLIFE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("HALFLIFE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("HALFLIFE_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("HALFLIFE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HALFLIFE_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
