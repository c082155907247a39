// Package auth provides the credential-to-mechanism registry, the
// authentication result model, and the per-request identity context.
//
// # Mechanisms
//
// A Mechanism validates exactly one credential kind against an identity
// store. Mechanisms declare their supported kinds at registration time; the
// Registry groups them by kind in insertion order and the orchestrator
// dispatches on the credential's kind. Built-in mechanisms:
//   - PasswordMechanism: username/password against the identity store
//   - OTPMechanism: password plus a time-based one-time code
//   - CertificateMechanism: X.509 client certificate digest match
//   - TrustedMechanism: trusted-username credentials produced during silent
//     re-authentication from a valid session
//
// Custom mechanisms implement the same Mechanism interface and register
// through the Registry.
//
// # Identity context
//
// Context is the per-request aggregate tracking credential, principal, roles,
// groups, context data, bound session, and the authentication result. Access
// to any tracked field touches the bound session, extending its sliding
// expiration window. Contexts are created per request by the caller and
// mutated exclusively by the orchestrator and mechanisms during one
// authentication call.
package auth
