package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name, e.g. MEETSCRIBE_API_BASE_URL.
const EnvPrefix = "MEETSCRIBE_"

// parseEnv overlays Config with MEETSCRIBE_* environment variables. Unset
// variables keep the current value. Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
