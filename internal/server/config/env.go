package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable read by the server,
// e.g. NOVELNEST_DATABASE_DSN.
const EnvPrefix = "NOVELNEST"

// parseEnv overlays NOVELNEST_* environment variables. Empty variables are
// treated as unset. The token lifetime is given in whole minutes.
func parseEnv(config *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	keys := []string{
		"http_addr", "grpc_addr", "database_dsn", "secret_key", "algorithm",
		"access_token_expire_minutes", "bcrypt_cost", "log_level",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if v.IsSet("http_addr") {
		config.EndpointAddrHTTP = v.GetString("http_addr")
	}
	if v.IsSet("grpc_addr") {
		config.EndpointAddrGRPC = v.GetString("grpc_addr")
	}
	if v.IsSet("database_dsn") {
		config.DatabaseDSN = v.GetString("database_dsn")
	}
	if v.IsSet("secret_key") {
		config.SecretKey = v.GetString("secret_key")
	}
	if v.IsSet("algorithm") {
		config.SigningAlgorithm = v.GetString("algorithm")
	}
	if v.IsSet("access_token_expire_minutes") {
		config.AccessTokenValidityDuration = time.Duration(v.GetInt("access_token_expire_minutes")) * time.Minute
	}
	if v.IsSet("bcrypt_cost") {
		config.BcryptCost = v.GetInt("bcrypt_cost")
	}
	if v.IsSet("log_level") {
		config.LogLevel = v.GetString("log_level")
	}
}
