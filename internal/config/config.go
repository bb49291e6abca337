// Package config resolves runtime configuration for the golfcities commands,
// primarily the Teeradar API credential.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cbrunner/golfcities/internal/course"
)

const (
	// APIKeyEnv is the environment variable holding the Teeradar API key.
	APIKeyEnv = "TEERADAR_API_KEY"

	// DefaultAPIKeyFile is the fallback key file checked when the
	// environment variable is unset.
	DefaultAPIKeyFile = "secrets/TEERADAR_API_KEY.txt"
)

// LoadAPIKey resolves the Teeradar API key. Resolution order: the
// TEERADAR_API_KEY environment variable (a .env file is loaded first when one
// exists), then the given key file. A missing key is a configuration error.
func LoadAPIKey(keyFile string) (string, error) {
	_ = godotenv.Load()

	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	if keyFile == "" {
		keyFile = DefaultAPIKeyFile
	}
	data, err := os.ReadFile(keyFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: no API key: set %s or create %s",
				course.ErrConfig, APIKeyEnv, keyFile)
		}
		return "", fmt.Errorf("reading API key file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("%w: API key file %s is empty", course.ErrConfig, keyFile)
	}
	return key, nil
}
