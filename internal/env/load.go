package env

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// LoadEnv loads variables from the given .env files (default ".env") into the
// process environment. Variables already set are not overridden.
func LoadEnv(logger zerolog.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Info().Msg("No .env file found, assuming environment variables are set directly.")
	}
}

// MustGetEnv returns the value of key and exits the process when it is unset.
func MustGetEnv(logger zerolog.Logger, key string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		logger.Fatal().Str("key", key).Msg("Environment variable not set")
	}
	return val
}
