package daemon

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/config"
	"github.com/gatebox/gatebox/internal/identity"
)

// seed creates the default admin account on an empty writable store so a
// fresh installation is reachable. The directory backend is read-only and is
// never seeded.
func seed(cfg *config.Config, store identity.Store) {
	if cfg.Identity.Backend == "ldap" {
		return
	}

	_, err := store.User("admin")
	if err == nil {
		return
	}

	if !errors.Is(err, identity.ErrUserNotFound) {
		log.Warn().Err(err).Msg("failed to check for default admin user")
		return
	}

	err = store.AddUser(&identity.User{
		Name:     "admin",
		Active:   true,
		Password: "changeme",
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to seed default admin user")
		return
	}

	log.Info().Msg("seeded default admin user, change the password")
}
