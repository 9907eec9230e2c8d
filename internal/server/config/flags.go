package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/meetscribe/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":3000")
//	-s string     JWT HMAC secret key
//	-t duration   token lifetime, e.g. 12h
//	-r int        login attempts per IP per minute
//	-p string     public base URL
//	-b string     federated login callback URL
//	-l string     log level
//
// os.Args is first filtered to these flags with flagx.FilterArgs, so -c and
// friends do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-r", "-p", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token lifetime")
	fs.IntVar(&config.LoginRateLimit, "r", config.LoginRateLimit, "login attempts per IP per minute")
	fs.StringVar(&config.PublicURL, "p", config.PublicURL, "public base URL")
	fs.StringVar(&config.CallbackURL, "b", config.CallbackURL, "federated login callback URL")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
