package auth

import (
	"errors"
	"fmt"

	"github.com/pquerna/otp/totp"

	"github.com/gatebox/gatebox/internal/credential"
	"github.com/gatebox/gatebox/internal/identity"
)

// OTPMechanism authenticates OTP credentials: the password part is validated
// by the identity store, the one-time code against the user's TOTP seed.
type OTPMechanism struct {
	store identity.Store
}

// NewOTPMechanism creates an OTP mechanism backed by the given store.
func NewOTPMechanism(store identity.Store) *OTPMechanism {
	return &OTPMechanism{store: store}
}

// Name returns the mechanism name.
func (m *OTPMechanism) Name() string { return "otp" }

// Info declares support for OTP credentials.
func (m *OTPMechanism) Info() []Info {
	return []Info{{
		Kind:        credential.KindOTP,
		Description: "Username, password and time-based one-time code authentication.",
	}}
}

// Authenticate validates the password part, then the one-time code.
func (m *OTPMechanism) Authenticate(cred credential.Credential) (*Result, error) {
	result := NewResult()

	otpCred, ok := cred.(credential.OTP)
	if !ok {
		return nil, fmt.Errorf("otp mechanism got %s credential", cred.Kind())
	}

	user, err := m.store.User(otpCred.UserName())
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			result.InvalidCredentials()
			return result, nil
		}

		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	valid, err := m.store.ValidateCredential(otpCred)
	if err != nil {
		if errors.Is(err, identity.ErrUserAccountDisabled) {
			result.Fail("user account is disabled")
			return result, nil
		}

		return nil, fmt.Errorf("failed to validate credential: %w", err)
	}

	if !valid {
		result.InvalidCredentials()
		return result, nil
	}

	seed := user.Attributes[identity.AttrOTPSecret]
	if seed == "" {
		result.Fail("user has no OTP seed, one-time codes can not be verified")
		return result, nil
	}

	if !totp.Validate(otpCred.Code(), seed) {
		result.InvalidCredentials()
		return result, nil
	}

	result.Success(NewPrincipal(otpCred.UserName()))

	return result, nil
}
