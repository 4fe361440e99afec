package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Device    DeviceConfig    `yaml:"device"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DeviceConfig selects the spooler variant once at startup. Spooler is
// "cups" or "windows"; Printer is the destination name handed to the
// spooler commands.
type DeviceConfig struct {
	Spooler       string        `yaml:"spooler"`
	Printer       string        `yaml:"printer"`
	SubmitTimeout time.Duration `yaml:"submit_timeout"`
	QueryTimeout  time.Duration `yaml:"query_timeout"`
}

type RetentionConfig struct {
	UploadDir string        `yaml:"upload_dir"`
	ScanDir   string        `yaml:"scan_dir"`
	Window    time.Duration `yaml:"window"`
	DailyAt   string        `yaml:"daily_at"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "./data/printd.db",
		},
		Device: DeviceConfig{
			Spooler:       "cups",
			Printer:       "",
			SubmitTimeout: 30 * time.Second,
			QueryTimeout:  5 * time.Second,
		},
		Retention: RetentionConfig{
			UploadDir: "./data/uploads",
			ScanDir:   "./data/scans",
			Window:    24 * time.Hour,
			DailyAt:   "03:00",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func LoadFromEnv() *Config {
	cfg := defaults()

	if v := os.Getenv("PRINTD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("PRINTD_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("PRINTD_SPOOLER"); v != "" {
		cfg.Device.Spooler = v
	}

	if v := os.Getenv("PRINTD_PRINTER"); v != "" {
		cfg.Device.Printer = v
	}

	if v := os.Getenv("PRINTD_UPLOAD_DIR"); v != "" {
		cfg.Retention.UploadDir = v
	}

	if v := os.Getenv("PRINTD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("server read timeout must be non-negative")
	}

	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server write timeout must be non-negative")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	switch c.Device.Spooler {
	case "cups", "windows":
	default:
		return fmt.Errorf("invalid spooler: %s (valid: cups, windows)", c.Device.Spooler)
	}

	if c.Device.SubmitTimeout <= 0 {
		return fmt.Errorf("device submit timeout must be positive")
	}

	if c.Device.QueryTimeout <= 0 {
		return fmt.Errorf("device query timeout must be positive")
	}

	if c.Retention.Window <= 0 {
		return fmt.Errorf("retention window must be positive")
	}

	if _, err := time.Parse("15:04", c.Retention.DailyAt); err != nil {
		return fmt.Errorf("invalid retention daily_at time %q (expected HH:MM)", c.Retention.DailyAt)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}

	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}
