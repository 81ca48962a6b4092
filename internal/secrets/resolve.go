package secrets

import (
	"errors"
	"strings"

	"stowaway/internal/services"
)

// Resolve merges the stored credentials with fallback. Stored fields win;
// empty ones are filled from fallback. Without a stored record the fallback
// is returned when it names a host, otherwise the not-found error is.
func Resolve(store *Store, fallback Credentials) (Credentials, error) {
	stored, err := store.LoadCredentials()
	if err != nil {
		if errors.Is(err, services.ErrNotFound) && strings.TrimSpace(fallback.Host) != "" {
			return fallback, nil
		}
		return Credentials{}, err
	}
	if stored.Host == "" {
		stored.Host = fallback.Host
	}
	if stored.User == "" {
		stored.User = fallback.User
	}
	if stored.Password == "" {
		stored.Password = fallback.Password
	}
	return stored, nil
}
