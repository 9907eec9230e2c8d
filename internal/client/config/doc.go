// Package config loads runtime configuration for the meetscribe client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. MEETSCRIBE_* environment variables (see parseEnv).
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string     API base URL
//	-d string     data directory
//	-t duration   per-request timeout
//	-l string     log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:3000",
//	  "data_dir": "meetscribe-data",
//	  "db_file": "client.db",
//	  "request_timeout": "15s",
//	  "log_level": "warn"
//	}
package config
