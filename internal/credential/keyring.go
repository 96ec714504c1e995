package credential

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/medreminder/internal/model"
)

const serviceName = "medreminder"

// Keyring keys for the notification secrets.
const (
	KeyEmailPassword   = "email-password"
	KeyTwilioAuthToken = "twilio-auth-token"
)

// Keys lists every key the application reads.
var Keys = []string{KeyEmailPassword, KeyTwilioAuthToken}

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a Vault over the system keyring, falling back to an
// encrypted file under the config directory.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(model.ConfigDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("medreminder-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves a credential value by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key. Only known keys are accepted.
func (v *Vault) Set(key, value string) error {
	if !known(key) {
		return fmt.Errorf("unknown credential %q (want one of %v)", key, Keys)
	}

	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (v *Vault) Delete(key string) error {
	if err := v.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Fill copies keyring secrets into cfg where the config and environment
// left them empty. It returns the keys that were filled. Missing keys are
// not an error.
func (v *Vault) Fill(cfg *model.NotifyConfig) ([]string, error) {
	targets := map[string]*string{
		KeyEmailPassword:   &cfg.Email.Password,
		KeyTwilioAuthToken: &cfg.Voice.AuthToken,
	}

	var filled []string
	for _, key := range Keys {
		dst := targets[key]
		if *dst != "" {
			continue
		}
		val, err := v.Get(key)
		if errors.Is(err, keyring.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return filled, err
		}
		*dst = val
		filled = append(filled, key)
	}
	return filled, nil
}

func known(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
