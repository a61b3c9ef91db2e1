// Package auth implements credential verification, brute-force lockout,
// dual-token issuance and rotation, lazy field-encryption migration and
// federated account linking for the course platform.
package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors of the auth subsystem. Handlers translate these into
// HTTP statuses; messages are user-safe and never carry secrets.
var (
	// ErrLoginNameNotFound: the submitted login name matches no account.
	// Reported distinctly from a wrong password, as the platform always has.
	ErrLoginNameNotFound = errors.New("login name does not exist")

	// ErrTokenExpired: a presented token is past its expiry. Terminal for
	// refresh tokens; the client must log in again.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid: bad signature, wrong signing key or malformed shape.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrTokenNotFound: a well-formed refresh token names an account that
	// does not exist or holds no active refresh slot.
	ErrTokenNotFound = errors.New("refresh token does not exist")

	// ErrTokenReused: a well-signed refresh token failed the stored-hash
	// comparison. The stored hash has been invalidated; a full login is
	// required.
	ErrTokenReused = errors.New("refresh token mismatch, session revoked")

	// ErrEmailMismatch: the email claimed by a federated login request does
	// not match the email asserted by the identity provider.
	ErrEmailMismatch = errors.New("identity token email mismatch")

	// ErrUpstreamIdentity: the identity provider rejected the assertion or
	// could not be reached.
	ErrUpstreamIdentity = errors.New("identity verification failed")
)

// ValidationError reports a missing or malformed registration field.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// InvalidCredentialError is returned for a wrong password while the account
// is still unlocked. AttemptsLeft tells the user how many tries remain
// before the account locks.
type InvalidCredentialError struct{ AttemptsLeft int }

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("wrong password, %d attempts left", e.AttemptsLeft)
}

// AccountLockedError is returned while an account refuses logins.
// RemainingSeconds is the lock time left, rounded up to whole seconds.
type AccountLockedError struct{ RemainingSeconds int64 }

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d seconds", e.RemainingSeconds)
}
