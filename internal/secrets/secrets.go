// Package secrets resolves credentials from env vars or mounted secret files.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// GetSecret looks up KEY_FILE first (docker/k8s mounted secret), then KEY.
// An unset secret yields defaultValue.
func GetSecret(envKey string, defaultValue string) (string, error) {
	if filePath := os.Getenv(envKey + "_FILE"); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("read secret file %s: %w", filePath, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if value, ok := os.LookupEnv(envKey); ok && value != "" {
		return value, nil
	}

	return defaultValue, nil
}

// GetOptionalSecret is GetSecret that falls back to defaultValue on read errors
func GetOptionalSecret(envKey string, defaultValue string) string {
	value, err := GetSecret(envKey, defaultValue)
	if err != nil {
		return defaultValue
	}
	return value
}
