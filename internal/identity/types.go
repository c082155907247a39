package identity

// User represents a user account held by an identity store.
// The Password field carries plaintext only on the way into AddUser; stores
// persist an Argon2id hash and never return the plaintext.
type User struct {
	// Name is the unique username.
	Name string
	// Email is the user's email address.
	Email string
	// FirstName is the user's first or given name.
	FirstName string
	// LastName is the user's last or family name.
	LastName string
	// Active indicates whether the account can authenticate.
	Active bool
	// Password is the plaintext password on AddUser input, empty on output.
	Password string
	// Attributes holds free-form per-user attributes, such as the TOTP seed
	// under AttrOTPSecret or the client certificate digest under
	// AttrCertificateDigest.
	Attributes map[string]string
}

// Attribute names with meaning to the built-in mechanisms.
const (
	// AttrOTPSecret is the base32 TOTP seed for the OTP mechanism.
	AttrOTPSecret = "otp-secret"
	// AttrCertificateDigest is the hex SHA-256 digest of the user's client
	// certificate for the certificate mechanism.
	AttrCertificateDigest = "certificate-sha256"
)

// Role is a named role assignable to users.
type Role struct {
	// Name is the unique role name.
	Name string
	// Description provides a human-readable description of the role.
	Description string
}

// Group is a named group users can belong to.
type Group struct {
	// Name is the unique group name.
	Name string
	// Description provides a human-readable description of the group.
	Description string
}
