package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root    string   `yaml:"root"`
		Include []string `yaml:"include"` // doublestar patterns, relative to root
		Exclude []string `yaml:"exclude"`
	} `yaml:"project"`
	Outline struct {
		MaxPropertyLength int `yaml:"max_property_length"`
	} `yaml:"outline"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Cache struct {
		MaxCostBytes int64 `yaml:"max_cost_bytes"`
	} `yaml:"cache"`
	Logging Logging `yaml:"logging"`
	Watch   struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`
	Metrics struct {
		Addr string `yaml:"addr"` // empty disables the /metrics endpoint
	} `yaml:"metrics"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Project.Root = "."
	cfg.Project.Include = []string{"**/*.js", "**/*.mjs", "**/*.cjs", "**/*.jsx"}
	cfg.Project.Exclude = []string{"**/node_modules/**", "**/*.min.js"}
	cfg.Outline.MaxPropertyLength = 50
	cfg.Storage.Path = "jsoutline.db"
	cfg.Cache.MaxCostBytes = 64 << 20
	cfg.Logging = Logging{Level: "info", Format: "text"}
	cfg.Watch.Debounce = 200 * time.Millisecond
	return &cfg
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("JSOUTLINE_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if db := os.Getenv("JSOUTLINE_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if level := os.Getenv("JSOUTLINE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
