// Package session implements server-side sessions independent of transport:
// creation with store-unique identifiers, concurrent-safe persistence,
// activity-based touch, and sliding expiration driven by an injected clock.
//
// A session is created on first successful authentication and destroyed on
// logout, explicit invalidation, or expiration. Expiration is a sliding
// window: every attribute access reschedules the session's timer from now.
// The validity flag flips exactly once; a concurrent expire and invalidate
// race is resolved by an atomic compare-and-swap, whichever side wins being
// authoritative.
package session
