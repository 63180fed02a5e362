package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Service groups this app's secrets in the OS keychain.
const Service = "rolematch"

// Well-known keychain account names.
const (
	AccountIMAPPassword  = "imap-password"
	AccountEncryptionKey = "session-encryption-key"
	AccountGeminiAPIKey  = "gemini-api-key"
	AccountOpenAIAPIKey  = "openai-api-key"
	AccountTelegramToken = "telegram-bot-token"
)

var ErrNotFound = errors.New("secret not found")

// Lookup resolves a secret by keychain account first and environment
// variable second. Either name may be empty to skip that source.
func Lookup(account, envVar string) (string, error) {
	if strings.TrimSpace(account) != "" {
		v, err := keyring.Get(Service, account)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(envVar) != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: account=%q env=%q", ErrNotFound, account, envVar)
}

// LookupOptional is Lookup for secrets the app can run without.
func LookupOptional(account, envVar string) string {
	v, err := Lookup(account, envVar)
	if err != nil {
		return ""
	}
	return v
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(Service, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(Service, account)
}
