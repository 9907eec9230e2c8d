package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/meetscribe/internal/flagx"
	"github.com/dmitrijs2005/meetscribe/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. TokenTTL uses timex.Duration, which accepts both "1h" and integer
// nanoseconds.
type JsonConfig struct {
	Addr           string         `json:"addr"`
	SecretKey      string         `json:"secret_key"`
	TokenTTL       timex.Duration `json:"token_ttl"`
	LoginRateLimit int            `json:"login_rate_limit"`
	PublicURL      string         `json:"public_url"`
	CallbackURL    string         `json:"callback_url"`
	LogLevel       string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config into config. Missing keys
// keep the current value. Panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFile(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenTTL.Duration > 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.LoginRateLimit > 0 {
		config.LoginRateLimit = c.LoginRateLimit
	}
	if c.PublicURL != "" {
		config.PublicURL = c.PublicURL
	}
	if c.CallbackURL != "" {
		config.CallbackURL = c.CallbackURL
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
