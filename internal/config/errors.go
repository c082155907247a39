package config

import (
	"errors"
)

var (
	// ErrNoMechanisms error if no authentication mechanism is enabled.
	ErrNoMechanisms = errors.New("toml config mechanisms can not be empty")

	// ErrUnknownBackend error if identity.backend names no known store.
	ErrUnknownBackend = errors.New("toml config identity.backend must be memory, sqlite or ldap")
)
