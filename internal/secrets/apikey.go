package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the app's secrets in the OS keychain.
	KeyringService = "jobfunnel"

	apiKeyEnv = "GEMINI_API_KEY"
)

// GetAPIKey returns the Gemini API key, preferring the environment so CI and
// one-off runs work without a keychain, then falling back to the OS keyring.
func GetAPIKey(keyringAccount string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyEnv)); key != "" {
		return key, nil
	}

	if strings.TrimSpace(keyringAccount) != "" {
		key, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(key) != "" {
			return key, nil
		}
	}

	return "", errors.New("gemini api key not found (set " + apiKeyEnv + " or store it in the keychain)")
}

// SetAPIKey stores the key in the OS keyring.
func SetAPIKey(keyringAccount, key string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, key)
}

// DeleteAPIKey removes the key from the OS keyring.
func DeleteAPIKey(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}
