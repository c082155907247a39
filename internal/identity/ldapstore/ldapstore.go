// Package ldapstore provides the LDAP-backed identity store. Credential
// validation is bind-based: the user's entry is located with a service bind,
// then the connection re-binds with the user's DN and password. The directory
// is authoritative, so the store is read-only and rejects mutations.
package ldapstore

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/identity"
)

// ErrReadOnly is returned by every mutating operation; accounts are managed
// in the directory, not through this store.
var ErrReadOnly = errors.New("ldap identity store is read-only")

// ErrMultipleUsersFound is returned when a user search matches more than one
// entry.
var ErrMultipleUsersFound = errors.New("multiple users found in directory")

// Config holds LDAP/Active Directory settings for the identity store.
type Config struct {
	// Host is the LDAP server hostname or IP address.
	Host string
	// Port is the LDAP server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS (LDAP over SSL/TLS) on port 636.
	UseSSL bool
	// UseTLS enables StartTLS to upgrade an LDAP connection to TLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for performing searches.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// BaseDN is the base distinguished name for user searches.
	BaseDN string
	// UserFilter is the LDAP filter for finding users (e.g., "(uid={username})").
	// The {username} placeholder is replaced with the actual username.
	UserFilter string
	// GroupBaseDN is the base distinguished name for group searches.
	GroupBaseDN string
	// GroupFilter is the LDAP filter for finding groups (e.g., "(member={userdn})").
	// The {userdn} placeholder is replaced with the user's DN.
	GroupFilter string
	// UsernameAttr is the LDAP attribute containing the username (e.g., "uid", "sAMAccountName").
	UsernameAttr string
	// EmailAttr is the LDAP attribute containing the email address (e.g., "mail").
	EmailAttr string
	// FirstNameAttr is the LDAP attribute containing the first/given name (e.g., "givenName").
	FirstNameAttr string
	// LastNameAttr is the LDAP attribute containing the last/surname (e.g., "sn").
	LastNameAttr string
	// GroupNameAttr is the LDAP attribute containing the group name (e.g., "cn").
	GroupNameAttr string
	// RoleMappings maps a directory group name to a role name. Groups without
	// a mapping contribute no role.
	RoleMappings map[string]string
	// Timeout is the connection timeout in seconds.
	Timeout int
}

func (c *Config) applyDefaults() {
	if c.UsernameAttr == "" {
		c.UsernameAttr = "uid"
	}

	if c.EmailAttr == "" {
		c.EmailAttr = "mail"
	}

	if c.FirstNameAttr == "" {
		c.FirstNameAttr = "givenName"
	}

	if c.LastNameAttr == "" {
		c.LastNameAttr = "sn"
	}

	if c.GroupNameAttr == "" {
		c.GroupNameAttr = "cn"
	}

	if c.UserFilter == "" {
		c.UserFilter = "(uid={username})"
	}

	if c.Timeout == 0 {
		c.Timeout = 10
	}
}

// Store is the LDAP identity store. It implements identity.Store with the
// directory as the source of truth.
type Store struct {
	config *Config
}

// New creates an LDAP identity store over the given configuration.
func New(config *Config) *Store {
	config.applyDefaults()

	return &Store{config: config}
}

// connect establishes a connection to the LDAP server.
func (s *Store) connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	var ldapURL string
	if s.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	} else {
		ldapURL = "ldap://" + hostPort
	}

	var tlsConfig *tls.Config
	if s.config.UseSSL || s.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: s.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         s.config.Host,
		}
	}

	conn, err := ldap.DialURL(ldapURL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	if !s.config.UseSSL && s.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			closeConn(conn)

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if s.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(s.config.Timeout) * time.Second)
	}

	return conn, nil
}

func closeConn(conn *ldap.Conn) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close LDAP connection")
	}
}

func (s *Store) bindService(conn *ldap.Conn) error {
	if s.config.BindDN == "" {
		return nil
	}

	if err := conn.Bind(s.config.BindDN, s.config.BindPassword); err != nil {
		return fmt.Errorf("failed to bind with service account: %w", err)
	}

	return nil
}

// searchUserEntry searches the directory for the given username and returns
// a single entry.
func (s *Store) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	userFilter := strings.ReplaceAll(s.config.UserFilter, "{username}", ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		s.config.Timeout,
		false,
		userFilter,
		[]string{
			s.config.UsernameAttr,
			s.config.EmailAttr,
			s.config.FirstNameAttr,
			s.config.LastNameAttr,
			"dn",
		},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, identity.ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

// userGroups retrieves the names of all groups the user's DN belongs to.
func (s *Store) userGroups(conn *ldap.Conn, userDN string) ([]string, error) {
	if s.config.GroupBaseDN == "" || s.config.GroupFilter == "" {
		return nil, nil
	}

	groupFilter := strings.ReplaceAll(s.config.GroupFilter, "{userdn}", ldap.EscapeFilter(userDN))
	searchRequest := ldap.NewSearchRequest(
		s.config.GroupBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		s.config.Timeout,
		false,
		groupFilter,
		[]string{s.config.GroupNameAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for groups: %w", err)
	}

	groups := make([]string, 0, len(searchResult.Entries))

	for _, entry := range searchResult.Entries {
		name := entry.GetAttributeValue(s.config.GroupNameAttr)
		if name == "" {
			name = entry.DN
		}

		groups = append(groups, name)
	}

	sort.Strings(groups)

	return groups, nil
}

// User returns the user's directory entry mapped onto the identity model.
// Directory accounts that resolve are always active.
func (s *Store) User(name string) (*identity.User, error) {
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	if err := s.bindService(conn); err != nil {
		return nil, err
	}

	entry, err := s.searchUserEntry(conn, name)
	if err != nil {
		return nil, err
	}

	return &identity.User{
		Name:      entry.GetAttributeValue(s.config.UsernameAttr),
		Email:     entry.GetAttributeValue(s.config.EmailAttr),
		FirstName: entry.GetAttributeValue(s.config.FirstNameAttr),
		LastName:  entry.GetAttributeValue(s.config.LastNameAttr),
		Active:    true,
	}, nil
}

// ValidateCredential validates a username/password credential by binding to
// the directory as the user. A rejected bind returns false without an error.
// Trusted credentials validate by entry existence alone. Other credential
// kinds are not supported by the directory.
func (s *Store) ValidateCredential(cred credential.Credential) (bool, error) {
	switch c := cred.(type) {
	case credential.UsernamePassword:
		return s.validatePassword(c.UserName(), c.Password())
	case credential.TrustedUsername:
		_, err := s.User(c.UserName())
		if errors.Is(err, identity.ErrUserNotFound) {
			return false, nil
		}

		if err != nil {
			return false, err
		}

		return true, nil
	default:
		return false, nil
	}
}

func (s *Store) validatePassword(username, password string) (bool, error) {
	// An empty password would be an unauthenticated simple bind, which many
	// directories accept. Reject it outright.
	if password == "" {
		return false, nil
	}

	conn, err := s.connect()
	if err != nil {
		return false, err
	}
	defer closeConn(conn)

	if err := s.bindService(conn); err != nil {
		return false, err
	}

	entry, err := s.searchUserEntry(conn, username)
	if errors.Is(err, identity.ErrUserNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if err := conn.Bind(entry.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return false, nil
		}

		return false, fmt.Errorf("failed to bind as user: %w", err)
	}

	return true, nil
}

// RolesOf maps the user's directory groups through the configured group-to-role
// mappings. Groups without a mapping contribute no role.
func (s *Store) RolesOf(username string) ([]string, error) {
	groups, err := s.GroupsOf(username)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})

	for _, group := range groups {
		if role, ok := s.config.RoleMappings[group]; ok {
			set[role] = struct{}{}
		}
	}

	roles := make([]string, 0, len(set))
	for role := range set {
		roles = append(roles, role)
	}

	sort.Strings(roles)

	return roles, nil
}

// GroupsOf returns the names of the user's directory groups, sorted.
func (s *Store) GroupsOf(username string) ([]string, error) {
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	if err := s.bindService(conn); err != nil {
		return nil, err
	}

	entry, err := s.searchUserEntry(conn, username)
	if err != nil {
		return nil, err
	}

	return s.userGroups(conn, entry.DN)
}

// Role resolves a role name defined by the group-to-role mappings.
func (s *Store) Role(name string) (*identity.Role, error) {
	for _, role := range s.config.RoleMappings {
		if role == name {
			return &identity.Role{Name: name}, nil
		}
	}

	return nil, identity.ErrRoleNotFound
}

// Group resolves a directory group by name.
func (s *Store) Group(name string) (*identity.Group, error) {
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer closeConn(conn)

	if err := s.bindService(conn); err != nil {
		return nil, err
	}

	if s.config.GroupBaseDN == "" {
		return nil, identity.ErrGroupNotFound
	}

	filter := fmt.Sprintf("(%s=%s)", s.config.GroupNameAttr, ldap.EscapeFilter(name))
	searchRequest := ldap.NewSearchRequest(
		s.config.GroupBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		s.config.Timeout,
		false,
		filter,
		[]string{s.config.GroupNameAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for group: %w", err)
	}

	if len(searchResult.Entries) == 0 {
		return nil, identity.ErrGroupNotFound
	}

	return &identity.Group{Name: name, Description: searchResult.Entries[0].DN}, nil
}

// Attribute reads a raw directory attribute from the user's entry, empty
// when unset.
func (s *Store) Attribute(username, name string) (string, error) {
	conn, err := s.connect()
	if err != nil {
		return "", err
	}
	defer closeConn(conn)

	if err := s.bindService(conn); err != nil {
		return "", err
	}

	userFilter := strings.ReplaceAll(s.config.UserFilter, "{username}", ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		s.config.Timeout,
		false,
		userFilter,
		[]string{name, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return "", fmt.Errorf("failed to search for user: %w", err)
	}

	if len(searchResult.Entries) == 0 {
		return "", identity.ErrUserNotFound
	}

	return searchResult.Entries[0].GetAttributeValue(name), nil
}

// AddUser is not supported; accounts are managed in the directory.
func (s *Store) AddUser(*identity.User) error { return ErrReadOnly }

// UpdateUser is not supported; accounts are managed in the directory.
func (s *Store) UpdateUser(*identity.User) error { return ErrReadOnly }

// RemoveUser is not supported; accounts are managed in the directory.
func (s *Store) RemoveUser(string) error { return ErrReadOnly }

// AddRole is not supported; roles come from the group-to-role mappings.
func (s *Store) AddRole(*identity.Role) error { return ErrReadOnly }

// AddGroup is not supported; groups are managed in the directory.
func (s *Store) AddGroup(*identity.Group) error { return ErrReadOnly }

// GrantRole is not supported; roles come from the group-to-role mappings.
func (s *Store) GrantRole(string, string) error { return ErrReadOnly }

// AddToGroup is not supported; memberships are managed in the directory.
func (s *Store) AddToGroup(string, string) error { return ErrReadOnly }

// SetAttribute is not supported; attributes are managed in the directory.
func (s *Store) SetAttribute(string, string, string) error { return ErrReadOnly }

// TestConnection establishes a connection and attempts the service bind.
func (s *Store) TestConnection() error {
	conn, err := s.connect()
	if err != nil {
		return err
	}
	defer closeConn(conn)

	return s.bindService(conn)
}
