// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: LoadEnv
// reads one or more .env files into the process environment, Load parses the
// environment into any struct with env field tags, and each configuration
// type is parsed at most once per process.
//
//	type SMTPConfig struct {
//	    Host string `env:"SMTP_HOST,required"`
//	    Port int    `env:"SMTP_PORT" envDefault:"587"`
//	}
//
//	var cfg SMTPConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// MustLoad and MustLoadEnv panic on failure for configuration the process
// cannot start without. ResetCache clears the per-type cache, which tests use
// between loads.
//
// Sentinel errors (ErrParsingConfig, ErrConfigNotLoaded, ErrNilPointer) are
// comparable with errors.Is.
package config
