// Package identity defines the narrow identity-store collaborator consumed by
// the authentication core, the user/role/group value types, and the default
// in-memory store.
//
// The core never persists identities itself. Backends translate their own
// protocols into this interface: the in-memory store here, the gorm-backed
// store in sqlstore, and the LDAP store in ldapstore.
package identity
