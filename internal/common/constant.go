// Package common contains shared constants and sentinel errors used across
// dogspotter components.
package common

// DogClassID is the COCO class index the detector reports for a dog.
const DogClassID = 16

// EnvTelegramToken is the environment variable holding the bot token.
const EnvTelegramToken = "TELEGRAM_BOT_TOKEN"

// EnvDatabaseDSN overrides the configured database DSN when set.
const EnvDatabaseDSN = "DATABASE_DSN"

// EnvConfigFile points to a JSON config file when no -c flag is given.
const EnvConfigFile = "DOGSPOTTER_CONFIG"
