package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env`
// tags. All service configuration comes in this way; there are no config
// files.
//
// Example:
//
//	type Config struct {
//	    HTTPPort     int    `env:"FILTER_HTTP_PORT" envDefault:"8020"`
//	    SearchEngine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
