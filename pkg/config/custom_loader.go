package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
)

// LoadEnv loads one or more .env files into the process environment before
// any config struct is parsed. Files are applied in order and later files
// override earlier ones as well as variables already present in the
// environment. With no arguments it loads the default ./.env when present.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		// The default .env file is optional.
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Overload(paths...); err != nil {
		return fmt.Errorf("load env files %v: %w", paths, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure, for configurations
// the application cannot start without.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache drops every cached configuration so the next Load parses the
// environment again. Intended for tests that mutate env vars between loads.
func ResetCache() {
	globalCache.mu.Lock()
	globalCache.values = make(map[string]any)
	globalCache.onces = make(map[string]*sync.Once)
	globalCache.mu.Unlock()
}
