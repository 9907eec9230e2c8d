package config

import "github.com/caarlos0/env/v11"

// EnvPrefix is prepended to every variable name, e.g. MEETSCRIBE_SERVER_ADDR.
const EnvPrefix = "MEETSCRIBE_SERVER_"

// parseEnv overlays Config with MEETSCRIBE_SERVER_* environment variables.
// Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
