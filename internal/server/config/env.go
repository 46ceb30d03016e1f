package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/dogspotter/internal/common"
	"github.com/joho/godotenv"
)

// dotenvFile is loaded before reading the environment; variables already set
// in the process environment win.
var dotenvFile = ".env"

// parseEnv overlays secrets that are normally supplied by the environment.
// A missing .env file is fine; a malformed one panics like a bad JSON file.
func parseEnv(config *Config) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v := os.Getenv(common.EnvTelegramToken); v != "" {
		config.TelegramToken = v
	}
	if v := os.Getenv(common.EnvDatabaseDSN); v != "" {
		config.DatabaseDSN = v
	}
}
