package config

import (
	"github.com/gatebox/gatebox/internal/logger"
)

// Session holds session management settings.
type Session struct {
	// TimeoutMinutes is the sliding expiration timeout. Zero or negative
	// disables expiration.
	TimeoutMinutes int `toml:"timeoutminutes" mapstructure:"timeoutminutes"`
}

// SQLite holds the embedded database settings.
type SQLite struct {
	Path string `toml:"path" mapstructure:"path"`
}

// LDAP holds directory settings for the LDAP identity backend.
type LDAP struct {
	Host         string            `toml:"host" mapstructure:"host"`
	Port         int               `toml:"port" mapstructure:"port"`
	UseSSL       bool              `toml:"usessl" mapstructure:"usessl"`
	UseTLS       bool              `toml:"usetls" mapstructure:"usetls"`
	SkipVerify   bool              `toml:"skipverify" mapstructure:"skipverify"`
	BindDN       string            `toml:"binddn" mapstructure:"binddn"`
	BindPassword string            `toml:"bindpassword" mapstructure:"bindpassword"`
	BaseDN       string            `toml:"basedn" mapstructure:"basedn"`
	UserFilter   string            `toml:"userfilter" mapstructure:"userfilter"`
	GroupBaseDN  string            `toml:"groupbasedn" mapstructure:"groupbasedn"`
	GroupFilter  string            `toml:"groupfilter" mapstructure:"groupfilter"`
	RoleMappings map[string]string `toml:"rolemappings" mapstructure:"rolemappings"`
	Timeout      int               `toml:"timeout" mapstructure:"timeout"`
}

// Identity selects and configures the identity backend.
type Identity struct {
	// Backend is the identity store implementation to use.
	Backend string `toml:"backend" mapstructure:"backend" validate:"oneof=memory sqlite ldap"`
	SQLite  SQLite `toml:"sqlite" mapstructure:"sqlite"`
	LDAP    LDAP   `toml:"ldap" mapstructure:"ldap"`
}

// EntitlementSeed loads one entitlement collection at startup. Kind selects
// the identity axis the collection is keyed by.
type EntitlementSeed struct {
	Resource     string   `toml:"resource" mapstructure:"resource" validate:"required"`
	Kind         string   `toml:"kind" mapstructure:"kind" validate:"oneof=user role group"`
	Name         string   `toml:"name" mapstructure:"name" validate:"required"`
	Entitlements []string `toml:"entitlements" mapstructure:"entitlements"`
}

// RoleRule allows the named roles access to a resource.
type RoleRule struct {
	Resource string   `toml:"resource" mapstructure:"resource" validate:"required"`
	Roles    []string `toml:"roles" mapstructure:"roles" validate:"min=1"`
}

// Config overall data structure.
type Config struct {
	DevMode bool          `toml:"devmode" mapstructure:"devmode"`
	Log     logger.Config `toml:"log" mapstructure:"log"`
	Session Session       `toml:"session" mapstructure:"session"`

	// Mechanisms are the enabled authentication mechanisms, in dispatch order.
	Mechanisms []string `toml:"mechanisms" mapstructure:"mechanisms" validate:"min=1,dive,oneof=password otp certificate trusted"`

	// Audit enables the audit observer; Metrics the Prometheus observer.
	Audit   bool `toml:"audit" mapstructure:"audit"`
	Metrics bool `toml:"metrics" mapstructure:"metrics"`

	Identity Identity `toml:"identity" mapstructure:"identity"`

	// Entitlements seeds the entitlement store at startup.
	Entitlements []EntitlementSeed `toml:"entitlements" mapstructure:"entitlements" validate:"dive"`

	// Authorize configures role based access rules. Resources without a rule
	// are unrestricted.
	Authorize []RoleRule `toml:"authorize" mapstructure:"authorize" validate:"dive"`
}
