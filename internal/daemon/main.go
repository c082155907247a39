// Package daemon assembles the authentication service from configuration and
// runs it until shutdown.
package daemon

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/audit"
	"github.com/gatebox/gatebox/internal/auth"
	"github.com/gatebox/gatebox/internal/authz"
	"github.com/gatebox/gatebox/internal/config"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/identity"
	"github.com/gatebox/gatebox/internal/identity/ldapstore"
	"github.com/gatebox/gatebox/internal/identity/sqlstore"
	"github.com/gatebox/gatebox/internal/manager"
	"github.com/gatebox/gatebox/internal/metrics"
	"github.com/gatebox/gatebox/internal/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg     *config.Config
	manager *manager.Manager
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil, nil
	}

	bus := event.NewBus()

	store, err := newIdentityStore(cfg, bus)
	if err != nil {
		return nil, err
	}

	seed(cfg, store)

	sessions, err := session.NewManager(
		session.NewMemoryStore(),
		bus,
		clock.New(),
		time.Duration(cfg.Session.TimeoutMinutes)*time.Minute,
	)
	if err != nil {
		return nil, err
	}

	mechanisms, err := newMechanisms(cfg, store)
	if err != nil {
		return nil, err
	}

	entitlements, err := newEntitlements(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Audit {
		if err := bus.AddObserver(audit.NewObserver(audit.NewLogProvider())); err != nil {
			return nil, err
		}
	}

	if cfg.Metrics {
		if err := bus.AddObserver(metrics.NewObserver()); err != nil {
			return nil, err
		}
	}

	mgr := manager.New(manager.Options{
		Store:        store,
		Mechanisms:   mechanisms,
		Bus:          bus,
		Sessions:     sessions,
		Authorizer:   newAuthorizer(cfg),
		Entitlements: entitlements,
	})

	return &Daemon{cfg: cfg, manager: mgr}, nil
}

// Manager returns the assembled authentication manager.
func (d *Daemon) Manager() *manager.Manager {
	return d.manager
}

// Start brings the manager into service and blocks until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	if err := d.manager.Start(); err != nil {
		return err
	}

	log.Info().Strs("mechanisms", d.manager.MechanismNames()).
		Str("backend", d.cfg.Identity.Backend).
		Msg("authentication service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	d.manager.Stop()

	return nil
}

func newIdentityStore(cfg *config.Config, bus *event.Bus) (identity.Store, error) {
	switch cfg.Identity.Backend {
	case "sqlite":
		return sqlstore.Open(cfg.Identity.SQLite.Path, bus)
	case "ldap":
		l := cfg.Identity.LDAP

		return ldapstore.New(&ldapstore.Config{
			Host:         l.Host,
			Port:         l.Port,
			UseSSL:       l.UseSSL,
			UseTLS:       l.UseTLS,
			SkipVerify:   l.SkipVerify,
			BindDN:       l.BindDN,
			BindPassword: l.BindPassword,
			BaseDN:       l.BaseDN,
			UserFilter:   l.UserFilter,
			GroupBaseDN:  l.GroupBaseDN,
			GroupFilter:  l.GroupFilter,
			RoleMappings: l.RoleMappings,
			Timeout:      l.Timeout,
		}), nil
	default:
		return identity.NewMemoryStore(bus), nil
	}
}

func newMechanisms(cfg *config.Config, store identity.Store) ([]auth.Mechanism, error) {
	mechanisms := make([]auth.Mechanism, 0, len(cfg.Mechanisms))

	for _, name := range cfg.Mechanisms {
		switch name {
		case "password":
			mechanisms = append(mechanisms, auth.NewPasswordMechanism(store))
		case "otp":
			mechanisms = append(mechanisms, auth.NewOTPMechanism(store))
		case "certificate":
			mechanisms = append(mechanisms, auth.NewCertificateMechanism(store))
		case "trusted":
			mechanisms = append(mechanisms, auth.NewTrustedMechanism(store))
		default:
			return nil, fmt.Errorf("unknown authentication mechanism %q", name)
		}
	}

	return mechanisms, nil
}

func newEntitlements(cfg *config.Config) (*authz.EntitlementsManager, error) {
	if len(cfg.Entitlements) == 0 {
		return nil, nil
	}

	store := authz.NewMemoryStore()

	for _, s := range cfg.Entitlements {
		ents := make([]authz.Entitlement, 0, len(s.Entitlements))
		for _, e := range s.Entitlements {
			ents = append(ents, authz.Entitlement(e))
		}

		c := authz.NewCollection(s.Name, ents...)
		r := authz.Resource(s.Resource)

		switch s.Kind {
		case "user":
			store.AddUserEntitlements(r, s.Name, c)
		case "role":
			store.AddRoleEntitlements(r, s.Name, c)
		case "group":
			store.AddGroupEntitlements(r, s.Name, c)
		default:
			return nil, fmt.Errorf("unknown entitlement kind %q", s.Kind)
		}
	}

	return authz.NewEntitlementsManager(store), nil
}

func newAuthorizer(cfg *config.Config) authz.AuthorizationManager {
	if len(cfg.Authorize) == 0 {
		return nil
	}

	allowed := make(map[authz.Resource][]string, len(cfg.Authorize))
	for _, rule := range cfg.Authorize {
		allowed[authz.Resource(rule.Resource)] = rule.Roles
	}

	return authz.NewRoleAuthorizer(allowed)
}
