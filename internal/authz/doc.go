// Package authz implements resource-scoped entitlement storage and the
// evaluator aggregating permissions across a context's user, roles, and
// groups.
//
// The store is a flat map keyed by resource identity plus identity-type
// identity. Resources may be named hierarchically, but the store performs no
// hierarchy traversal and no inheritance from enclosing resources. Repeated
// adds for the same key union into the existing collection rather than
// replacing it.
package authz
