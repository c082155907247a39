package sqlstore

import "time"

// UserRecord is the persisted form of a user account. The password column
// holds an Argon2id hash, never plaintext.
type UserRecord struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Name is the unique username for login.
	Name string `gorm:"unique;size:100;not null"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// FirstName is the user's first or given name.
	FirstName string `gorm:"size:100"`
	// LastName is the user's last or family name.
	LastName string `gorm:"size:100"`
	// Active indicates whether the user account can authenticate.
	Active bool
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName overrides the GORM table name.
func (UserRecord) TableName() string { return "users" }

// RoleRecord is the persisted form of a role.
type RoleRecord struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Description string `gorm:"size:255"`
}

// TableName overrides the GORM table name.
func (RoleRecord) TableName() string { return "roles" }

// GroupRecord is the persisted form of a group.
type GroupRecord struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"unique;size:100;not null"`
	Description string `gorm:"size:255"`
}

// TableName overrides the GORM table name.
func (GroupRecord) TableName() string { return "groups" }

// UserRoleRecord maps a user to a granted role.
type UserRoleRecord struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`
	RoleID uint64 `gorm:"index;not null"`
}

// TableName overrides the GORM table name.
func (UserRoleRecord) TableName() string { return "user_roles" }

// UserGroupRecord maps a user to a group membership.
type UserGroupRecord struct {
	ID      uint64 `gorm:"primaryKey"`
	UserID  uint64 `gorm:"index;not null"`
	GroupID uint64 `gorm:"index;not null"`
}

// TableName overrides the GORM table name.
func (UserGroupRecord) TableName() string { return "user_groups" }

// UserAttributeRecord holds one free-form attribute of a user, such as a
// TOTP seed or a certificate digest.
type UserAttributeRecord struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`
	Name   string `gorm:"size:100;not null"`
	Value  string `gorm:"size:1024"`
}

// TableName overrides the GORM table name.
func (UserAttributeRecord) TableName() string { return "user_attributes" }
