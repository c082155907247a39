// Package sqlstore provides the SQL-backed identity store on GORM. It is the
// durable counterpart of the in-memory store and exposes the exact same
// behavior, including Argon2id password hashing and identity events.
package sqlstore

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/event"
	"github.com/gatebox/gatebox/internal/identity"
)

const whereName = "name = ?"

// Store is the SQL identity store. It implements identity.Store over a GORM
// database handle.
type Store struct {
	db  *gorm.DB
	bus *event.Bus
}

// Open opens (or creates) the SQLite database at path, migrates the schema,
// and returns a store over it. The bus may be nil; then no identity events
// are raised.
func Open(path string, bus *event.Bus) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open identity database: %w", err)
	}

	return New(db, bus)
}

// New wraps an existing GORM handle, migrating the identity schema.
func New(db *gorm.DB, bus *event.Bus) (*Store, error) {
	err := db.AutoMigrate(
		&UserRecord{},
		&RoleRecord{},
		&GroupRecord{},
		&UserRoleRecord{},
		&UserGroupRecord{},
		&UserAttributeRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate identity schema: %w", err)
	}

	return &Store{db: db, bus: bus}, nil
}

func (s *Store) raise(e event.Event) {
	if s.bus != nil {
		s.bus.Raise(e)
	}
}

// AddUser creates a user, hashing the plaintext password in u.Password.
func (s *Store) AddUser(u *identity.User) error {
	hash := ""

	if u.Password != "" {
		var err error

		hash, err = argon2id.CreateHash(u.Password, argon2id.DefaultParams)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing UserRecord

		err := tx.Where(whereName, u.Name).First(&existing).Error
		if err == nil {
			return identity.ErrUserExists
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing user: %w", err)
		}

		record := UserRecord{
			Name:      u.Name,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Active:    u.Active,
			Password:  hash,
		}

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		return replaceAttributes(tx, record.ID, u.Attributes)
	})
	if err != nil {
		return err
	}

	s.raise(identity.CreatedEvent{Identity: identity.IdentityUser, Name: u.Name})

	return nil
}

// User returns the user by name, without the password hash.
func (s *Store) User(name string) (*identity.User, error) {
	record, err := s.userRecord(name)
	if err != nil {
		return nil, err
	}

	attrs, err := s.attributesOf(record.ID)
	if err != nil {
		return nil, err
	}

	return &identity.User{
		Name:       record.Name,
		Email:      record.Email,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Active:     record.Active,
		Attributes: attrs,
	}, nil
}

// UpdateUser replaces the stored profile and attributes. A non-empty
// u.Password rehashes the stored credential.
func (s *Store) UpdateUser(u *identity.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record UserRecord

		err := tx.Where(whereName, u.Name).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.ErrUserNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}

		record.Email = u.Email
		record.FirstName = u.FirstName
		record.LastName = u.LastName
		record.Active = u.Active

		if u.Password != "" {
			hash, errHash := argon2id.CreateHash(u.Password, argon2id.DefaultParams)
			if errHash != nil {
				return fmt.Errorf("failed to hash password: %w", errHash)
			}

			record.Password = hash
		}

		if err := tx.Save(&record).Error; err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		return replaceAttributes(tx, record.ID, u.Attributes)
	})
	if err != nil {
		return err
	}

	s.raise(identity.UpdatedEvent{Identity: identity.IdentityUser, Name: u.Name})

	return nil
}

// RemoveUser deletes the user, its memberships, and its attributes.
func (s *Store) RemoveUser(name string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var record UserRecord

		err := tx.Where(whereName, name).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.ErrUserNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}

		if err := tx.Where("user_id = ?", record.ID).Delete(&UserRoleRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete role grants: %w", err)
		}

		if err := tx.Where("user_id = ?", record.ID).Delete(&UserGroupRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete group memberships: %w", err)
		}

		if err := tx.Where("user_id = ?", record.ID).Delete(&UserAttributeRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete attributes: %w", err)
		}

		return tx.Delete(&record).Error
	})
	if err != nil {
		return err
	}

	s.raise(identity.RemovedEvent{Identity: identity.IdentityUser, Name: name})

	return nil
}

// AddRole creates a role, updating the description on a duplicate name.
func (s *Store) AddRole(r *identity.Role) error {
	var record RoleRecord

	err := s.db.Where(whereName, r.Name).First(&record).Error
	if err == nil {
		record.Description = r.Description
		return s.db.Save(&record).Error
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing role: %w", err)
	}

	record = RoleRecord{Name: r.Name, Description: r.Description}

	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	s.raise(identity.CreatedEvent{Identity: identity.IdentityRole, Name: r.Name})

	return nil
}

// AddGroup creates a group, updating the description on a duplicate name.
func (s *Store) AddGroup(g *identity.Group) error {
	var record GroupRecord

	err := s.db.Where(whereName, g.Name).First(&record).Error
	if err == nil {
		record.Description = g.Description
		return s.db.Save(&record).Error
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check existing group: %w", err)
	}

	record = GroupRecord{Name: g.Name, Description: g.Description}

	if err := s.db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	s.raise(identity.CreatedEvent{Identity: identity.IdentityGroup, Name: g.Name})

	return nil
}

// Role returns the named role.
func (s *Store) Role(name string) (*identity.Role, error) {
	var record RoleRecord

	err := s.db.Where(whereName, name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &identity.Role{Name: record.Name, Description: record.Description}, nil
}

// Group returns the named group.
func (s *Store) Group(name string) (*identity.Group, error) {
	var record GroupRecord

	err := s.db.Where(whereName, name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrGroupNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query group: %w", err)
	}

	return &identity.Group{Name: record.Name, Description: record.Description}, nil
}

// GrantRole assigns a role to a user. Granting an already held role is a
// no-op.
func (s *Store) GrantRole(username, role string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := userRecordTx(tx, username)
		if err != nil {
			return err
		}

		var roleRecord RoleRecord

		err = tx.Where(whereName, role).First(&roleRecord).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.ErrRoleNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to query role: %w", err)
		}

		var existing UserRoleRecord

		err = tx.Where("user_id = ? AND role_id = ?", user.ID, roleRecord.ID).First(&existing).Error
		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check role grant: %w", err)
		}

		return tx.Create(&UserRoleRecord{UserID: user.ID, RoleID: roleRecord.ID}).Error
	})
}

// AddToGroup adds a user to a group. Adding twice is a no-op.
func (s *Store) AddToGroup(username, group string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := userRecordTx(tx, username)
		if err != nil {
			return err
		}

		var groupRecord GroupRecord

		err = tx.Where(whereName, group).First(&groupRecord).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return identity.ErrGroupNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to query group: %w", err)
		}

		var existing UserGroupRecord

		err = tx.Where("user_id = ? AND group_id = ?", user.ID, groupRecord.ID).First(&existing).Error
		if err == nil {
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check group membership: %w", err)
		}

		return tx.Create(&UserGroupRecord{UserID: user.ID, GroupID: groupRecord.ID}).Error
	})
}

// RolesOf returns the user's role names, sorted by name.
func (s *Store) RolesOf(username string) ([]string, error) {
	user, err := s.userRecord(username)
	if err != nil {
		return nil, err
	}

	var names []string

	err = s.db.Model(&RoleRecord{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", user.ID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}

	return names, nil
}

// GroupsOf returns the user's group names, sorted by name.
func (s *Store) GroupsOf(username string) ([]string, error) {
	user, err := s.userRecord(username)
	if err != nil {
		return nil, err
	}

	var names []string

	err = s.db.Model(&GroupRecord{}).
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", user.ID).
		Order("groups.name").
		Pluck("groups.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}

	return names, nil
}

// ValidateCredential checks the credential's secret material against the
// stored identity. Wrong secrets return false without an error.
func (s *Store) ValidateCredential(cred credential.Credential) (bool, error) {
	var record UserRecord

	err := s.db.Where(whereName, cred.UserName()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to query user: %w", err)
	}

	if !record.Active {
		return false, identity.ErrUserAccountDisabled
	}

	switch c := cred.(type) {
	case credential.UsernamePassword:
		return comparePassword(c.Password(), record.Password)
	case credential.OTP:
		// The one-time code itself is verified by the OTP mechanism; the
		// store only vouches for the password part.
		return comparePassword(c.Password(), record.Password)
	case credential.Certificate:
		if c.Cert() == nil {
			return false, nil
		}

		expected, errAttr := s.attributeOf(record.ID, identity.AttrCertificateDigest)
		if errAttr != nil {
			return false, errAttr
		}

		digest := sha256.Sum256(c.Cert().Raw)

		return expected != "" &&
			subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest[:])), []byte(expected)) == 1, nil
	case credential.TrustedUsername:
		// Trusted credentials carry no secret; existence of the active user
		// is the whole check.
		return true, nil
	default:
		return false, nil
	}
}

// SetAttribute stores a per-user attribute, overwriting an existing value.
func (s *Store) SetAttribute(username, name, value string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := userRecordTx(tx, username)
		if err != nil {
			return err
		}

		var record UserAttributeRecord

		err = tx.Where("user_id = ? AND name = ?", user.ID, name).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&UserAttributeRecord{UserID: user.ID, Name: name, Value: value}).Error
		}

		if err != nil {
			return fmt.Errorf("failed to query attribute: %w", err)
		}

		record.Value = value

		return tx.Save(&record).Error
	})
}

// Attribute reads a per-user attribute, empty when unset.
func (s *Store) Attribute(username, name string) (string, error) {
	user, err := s.userRecord(username)
	if err != nil {
		return "", err
	}

	return s.attributeOf(user.ID, name)
}

func (s *Store) userRecord(name string) (*UserRecord, error) {
	return userRecordTx(s.db, name)
}

func userRecordTx(tx *gorm.DB, name string) (*UserRecord, error) {
	var record UserRecord

	err := tx.Where(whereName, name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, identity.ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &record, nil
}

func (s *Store) attributesOf(userID uint64) (map[string]string, error) {
	var records []UserAttributeRecord

	if err := s.db.Where("user_id = ?", userID).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query attributes: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	attrs := make(map[string]string, len(records))
	for _, record := range records {
		attrs[record.Name] = record.Value
	}

	return attrs, nil
}

func (s *Store) attributeOf(userID uint64, name string) (string, error) {
	var record UserAttributeRecord

	err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to query attribute: %w", err)
	}

	return record.Value, nil
}

func replaceAttributes(tx *gorm.DB, userID uint64, attrs map[string]string) error {
	if err := tx.Where("user_id = ?", userID).Delete(&UserAttributeRecord{}).Error; err != nil {
		return fmt.Errorf("failed to clear attributes: %w", err)
	}

	for name, value := range attrs {
		record := UserAttributeRecord{UserID: userID, Name: name, Value: value}

		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to store attribute: %w", err)
		}
	}

	return nil
}

func comparePassword(password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}

	match, err := argon2id.ComparePasswordAndHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}

	return match, nil
}
