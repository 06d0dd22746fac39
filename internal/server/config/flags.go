package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8000")
//	-g string   gRPC health bind address, empty disables it
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-m string   JWT signing algorithm (HS256, HS384, HS512)
//	-t int      access token validity, minutes
//	-b int      bcrypt cost
//	-l string   log level
//
// Only these flags are looked at; -c/-config and anything else is left to
// other parsers.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-m", "-t", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run REST server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningAlgorithm, "m", config.SigningAlgorithm, "JWT signing algorithm")
	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only touch the lifetime when -t was given, so a sub-minute value from
	// JSON is not truncated.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
