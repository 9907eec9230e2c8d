package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the meetscribe client.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the meetscribe API.
//   - DataDir: directory holding the local database.
//   - DBFile: database file name inside DataDir.
//   - RequestTimeout: deadline applied to every API call.
//   - TransferTimeout: deadline for media uploads and PDF downloads.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	APIBaseURL      string        `env:"API_BASE_URL"`
	DataDir         string        `env:"DATA_DIR"`
	DBFile          string        `env:"DB_FILE"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"`
	TransferTimeout time.Duration `env:"TRANSFER_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.DataDir = "meetscribe-data"
	c.DBFile = "client.db"
	c.RequestTimeout = 15 * time.Second
	c.TransferTimeout = 10 * time.Minute
	c.LogLevel = "warn"
}

// DBPath is the location of the local SQLite database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a JSON file (if given) and command-line flags (if
// present). Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
