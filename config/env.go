package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// loadEnvFile reads .env from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading .env file: %w", err)
	}
	return nil
}
