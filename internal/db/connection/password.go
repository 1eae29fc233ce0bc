package connection

import (
	"github.com/go-faster/errors"
	"github.com/zalando/go-keyring"

	"github.com/Sunsu-Sulution/bear-vault/internal/models"
)

const keyringService = "bearvault"

// ErrPasswordNotFound is returned when no password is stored for a connection
var ErrPasswordNotFound = errors.New("password not found in keyring")

// SavePassword stores the connection password in the OS keyring under its name
func SavePassword(name, password string) error {
	if password == "" {
		return nil
	}
	if err := keyring.Set(keyringService, name, password); err != nil {
		return errors.Wrap(err, "save password to keyring")
	}
	return nil
}

// LookupPassword reads a stored password for the named connection
func LookupPassword(name string) (string, error) {
	pw, err := keyring.Get(keyringService, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrPasswordNotFound
		}
		return "", errors.Wrap(err, "read password from keyring")
	}
	return pw, nil
}

// DeletePassword removes a stored password, ignoring missing entries
func DeletePassword(name string) error {
	err := keyring.Delete(keyringService, name)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Wrap(err, "delete password from keyring")
	}
	return nil
}

// withPassword fills an empty password from the keyring. A missing keyring
// entry leaves the config unchanged.
func withPassword(config models.ConnectionConfig) (models.ConnectionConfig, error) {
	if config.Password != "" || config.Name == "" {
		return config, nil
	}
	pw, err := LookupPassword(config.Name)
	switch {
	case err == nil:
		config.Password = pw
	case errors.Is(err, ErrPasswordNotFound):
	default:
		return config, err
	}
	return config, nil
}
