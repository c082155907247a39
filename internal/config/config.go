// Package config handles input from etc/*.toml files with GATEBOX_* env
// overrides.
package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "GATEBOX"

// ReadConfig from config file. An empty path falls back to ./etc/gatebox.toml.
// Every key can be overridden through GATEBOX_* environment variables, with
// dots replaced by underscores (GATEBOX_SESSION_TIMEOUTMINUTES).
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/gatebox.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	return c, validate(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mechanisms", []string{"password"})
	v.SetDefault("session.timeoutminutes", 30)
	v.SetDefault("identity.backend", "memory")
	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "gatebox")
	v.SetDefault("log.servicename", "gatebox")
	v.SetDefault("log.console.enabled", true)
	v.SetDefault("identity.ldap.port", 389)
}

// validate minimal config settings needed to assemble the service.
func validate(c Config) error {
	invalidErrMessage := "invalid config"

	if len(c.Mechanisms) == 0 {
		return errors.Wrap(ErrNoMechanisms, invalidErrMessage)
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	switch c.Identity.Backend {
	case "memory", "sqlite", "ldap":
	default:
		return errors.Wrap(ErrUnknownBackend, invalidErrMessage)
	}

	if c.Identity.Backend == "sqlite" && c.Identity.SQLite.Path == "" {
		return errors.Wrap(errors.New("toml config identity.sqlite.path can not be empty"), invalidErrMessage)
	}

	if c.Identity.Backend == "ldap" && c.Identity.LDAP.Host == "" {
		return errors.Wrap(errors.New("toml config identity.ldap.host can not be empty"), invalidErrMessage)
	}

	return nil
}
