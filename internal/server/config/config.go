// Package config handles configuration for the development API server,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the meetscribe development API server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default outside development.
//   - TokenTTL: lifetime of issued bearer tokens.
//   - LoginRateLimit: login attempts allowed per client IP per minute.
//   - PublicURL: base URL of this server, used in verification links.
//   - CallbackURL: client route the federated login redirects to with ?token=.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr           string        `env:"ADDR"`
	SecretKey      string        `env:"SECRET_KEY"`
	TokenTTL       time.Duration `env:"TOKEN_TTL"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT"`
	PublicURL      string        `env:"PUBLIC_URL"`
	CallbackURL    string        `env:"CALLBACK_URL"`
	LogLevel       string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.SecretKey = "secretKey"
	c.TokenTTL = 24 * time.Hour
	c.LoginRateLimit = 10
	c.PublicURL = "http://localhost:3000"
	c.CallbackURL = "http://localhost:5173/auth/callback"
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment, an optional JSON file and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
