// Package main provides the entry point for the gatebox authentication
// service. It assembles a pluggable authentication manager with credential
// mechanisms, session management with sliding expiration, an event bus for
// lifecycle observation, and role based authorization with entitlement
// evaluation. Identity data can live in memory, in an embedded SQLite
// database via gorm, or in an LDAP directory.
package main
