package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/novelnest/internal/flagx"
	"github.com/dmitrijs2005/novelnest/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept both "30m" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	SigningAlgorithm            string         `json:"signing_algorithm"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	BcryptCost                  int            `json:"bcrypt_cost"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config in args.
// Keys missing from the file leave the current value untouched. An
// unreadable file or invalid JSON panics, like a bad flag does.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningAlgorithm, c.SigningAlgorithm)
	setString(&config.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
