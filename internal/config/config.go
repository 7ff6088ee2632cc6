// Package config loads and normalises docshare server configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr      = "127.0.0.1"
	defaultPort      = ":5000"
	defaultData      = "data"
	defaultAssetsDir = "ui"
	defaultName      = "Docshare"
	defaultDriver    = DriverSQLite
	defaultLogLevel  = "info"

	// DefaultMaxUploadBytes caps request bodies on the upload route (20 MiB).
	DefaultMaxUploadBytes int64 = 20 * 1024 * 1024
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
	Port string `json:"port" yaml:"port"`
}

// AppConfig configures assets, data locations and limits.
type AppConfig struct {
	Name           string `json:"name" yaml:"name"`
	Assets         string `json:"assets" yaml:"assets"`
	Data           string `json:"data" yaml:"data"`
	Uploads        string `json:"uploads" yaml:"uploads"`
	Logs           string `json:"logs" yaml:"logs"`
	LogLevel       string `json:"log_level" yaml:"log_level"`
	MaxUploadBytes int64  `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	DSN    string `json:"dsn" yaml:"dsn"`
}

// Config represents the runtime settings parsed from config.json or
// config.yaml.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	App    AppConfig    `json:"app" yaml:"app"`
	Store  StoreConfig  `json:"store" yaml:"store"`
}

// ListenAddr joins the server address and port.
func (c Config) ListenAddr() string {
	port := c.Server.Port
	if port != "" && !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return c.Server.Addr + port
}

// LoadEnv reads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// Load reads the config at path, decoding YAML for .yaml/.yml files and
// JSON otherwise, then applies environment overrides and defaults. A missing
// file yields the defaults.
func Load(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config: %w", err)
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Server.Addr = "0.0.0.0"
		cfg.Server.Port = port
	}
	if listen := strings.TrimSpace(os.Getenv("DOCSHARE_LISTEN")); listen != "" {
		if idx := strings.LastIndex(listen, ":"); idx >= 0 {
			cfg.Server.Addr = listen[:idx]
			cfg.Server.Port = listen[idx:]
		}
	}
	if driver := strings.TrimSpace(os.Getenv("DOCSHARE_STORE_DRIVER")); driver != "" {
		cfg.Store.Driver = driver
	}
	if dsn := strings.TrimSpace(os.Getenv("DOCSHARE_DATABASE_URL")); dsn != "" {
		cfg.Store.DSN = dsn
	}
	if data := strings.TrimSpace(os.Getenv("DOCSHARE_DATA_DIR")); data != "" {
		cfg.App.Data = data
	}
	if level := strings.TrimSpace(os.Getenv("DOCSHARE_LOG_LEVEL")); level != "" {
		cfg.App.LogLevel = level
	}
	if raw := strings.TrimSpace(os.Getenv("DOCSHARE_MAX_UPLOAD_BYTES")); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.App.MaxUploadBytes = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.App.Name == "" {
		cfg.App.Name = defaultName
	}
	if cfg.App.Assets == "" {
		cfg.App.Assets = defaultAssetsDir
	}
	if cfg.App.Data == "" {
		cfg.App.Data = defaultData
	}
	if cfg.App.Uploads == "" {
		cfg.App.Uploads = filepath.Join(cfg.App.Data, "uploads")
	}
	if cfg.App.Logs == "" {
		cfg.App.Logs = filepath.Join(cfg.App.Data, "logs")
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = defaultLogLevel
	}
	if cfg.App.MaxUploadBytes <= 0 {
		cfg.App.MaxUploadBytes = DefaultMaxUploadBytes
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaultDriver
	}
	if cfg.Store.Driver == DriverSQLite && cfg.Store.DSN == "" {
		cfg.Store.DSN = filepath.Join(cfg.App.Data, "app.db")
	}
}

// Validate reports settings that cannot be served.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return errors.New("config: postgres store requires a dsn")
		}
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}
