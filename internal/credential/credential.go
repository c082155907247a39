package credential

import "crypto/x509"

// Kind discriminates the concrete credential type carried by a Credential.
// Mechanisms register against kinds; the registry dispatches on them.
type Kind string

const (
	// KindUsernamePassword is a username and plaintext password pair.
	KindUsernamePassword Kind = "username-password"
	// KindOTP is a username/password pair combined with a time-based one-time code.
	KindOTP Kind = "otp"
	// KindCertificate is an X.509 client certificate.
	KindCertificate Kind = "certificate"
	// KindTrustedUsername carries only a username whose identity is already
	// trusted, typically restored from a previously validated session.
	KindTrustedUsername Kind = "trusted-username"
)

// Credential is the raw material consumed by exactly one authentication
// mechanism kind. Implementations are immutable once constructed; custom
// credential types implement this interface with their own Kind.
type Credential interface {
	Kind() Kind
	UserName() string
}

// UsernamePassword carries a username and plaintext password.
type UsernamePassword struct {
	username string
	password string
}

// NewUsernamePassword creates a username/password credential.
func NewUsernamePassword(username, password string) UsernamePassword {
	return UsernamePassword{username: username, password: password}
}

// Kind returns KindUsernamePassword.
func (c UsernamePassword) Kind() Kind { return KindUsernamePassword }

// UserName returns the username.
func (c UsernamePassword) UserName() string { return c.username }

// Password returns the plaintext password.
func (c UsernamePassword) Password() string { return c.password }

// OTP carries a username/password pair plus a time-based one-time code.
type OTP struct {
	username string
	password string
	code     string
}

// NewOTP creates an OTP credential.
func NewOTP(username, password, code string) OTP {
	return OTP{username: username, password: password, code: code}
}

// Kind returns KindOTP.
func (c OTP) Kind() Kind { return KindOTP }

// UserName returns the username.
func (c OTP) UserName() string { return c.username }

// Password returns the plaintext password.
func (c OTP) Password() string { return c.password }

// Code returns the one-time code.
func (c OTP) Code() string { return c.code }

// Certificate carries an X.509 client certificate. The subject common name is
// used as the username.
type Certificate struct {
	cert *x509.Certificate
}

// NewCertificate creates a certificate credential.
func NewCertificate(cert *x509.Certificate) Certificate {
	return Certificate{cert: cert}
}

// Kind returns KindCertificate.
func (c Certificate) Kind() Kind { return KindCertificate }

// UserName returns the certificate subject common name.
func (c Certificate) UserName() string {
	if c.cert == nil {
		return ""
	}

	return c.cert.Subject.CommonName
}

// Cert returns the underlying certificate.
func (c Certificate) Cert() *x509.Certificate { return c.cert }

// TrustedUsername carries a username that is trusted without secret material.
// It is produced internally during silent re-authentication from a valid
// session and must never be built from unvalidated user input.
type TrustedUsername struct {
	username string
}

// NewTrustedUsername creates a trusted-username credential.
func NewTrustedUsername(username string) TrustedUsername {
	return TrustedUsername{username: username}
}

// Kind returns KindTrustedUsername.
func (c TrustedUsername) Kind() Kind { return KindTrustedUsername }

// UserName returns the trusted username.
func (c TrustedUsername) UserName() string { return c.username }
