package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/Wilfredoo/crew-scraper/internal/config"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "crew-scraper"

// KeyringAccount is the keychain entry holding the SMTP password.
func KeyringAccount(cfg config.MailConfig) string {
	if strings.TrimSpace(cfg.KeyringAccount) != "" {
		return cfg.KeyringAccount
	}
	return fmt.Sprintf("smtp:%s@%s", cfg.Username, cfg.Host)
}

// SMTPPassword prefers a password from config or env, then the keychain.
func SMTPPassword(cfg config.MailConfig) (string, error) {
	if strings.TrimSpace(cfg.Password) != "" {
		return cfg.Password, nil
	}
	if strings.TrimSpace(cfg.Username) == "" && strings.TrimSpace(cfg.KeyringAccount) == "" {
		return "", errors.New("SMTP password not found (no username to look up in keychain)")
	}

	pw, err := keyring.Get(KeyringService, KeyringAccount(cfg))
	if err == nil && strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	return "", errors.New("SMTP password not found (set SMTP_PASSWORD or run `mailer set-password`)")
}

func SetSMTPPassword(cfg config.MailConfig, password string) error {
	if strings.TrimSpace(cfg.Username) == "" && strings.TrimSpace(cfg.KeyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, KeyringAccount(cfg), password)
}

func DeleteSMTPPassword(cfg config.MailConfig) error {
	return keyring.Delete(KeyringService, KeyringAccount(cfg))
}
