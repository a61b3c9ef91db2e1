package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/minhle/coursehub-auth/internal/crypto"
	"github.com/minhle/coursehub-auth/internal/model"
	"github.com/minhle/coursehub-auth/internal/notify"
	"github.com/minhle/coursehub-auth/internal/repository"
)

// Session is the payload of a successful login.
type Session struct {
	Message      string
	User         UserSummary
	AccessToken  string
	RefreshToken string
}

// UserSummary is the account as shown to the client, display name already
// decrypted.
type UserSummary struct {
	ID          uint64
	DisplayName string
	RoleFlag    bool
	Avatar      string
}

// RegisterInput is the field set accepted by registration.
type RegisterInput struct {
	LoginName   string
	Secret      string
	DisplayName string
	Email       string
	Sex         string
}

// AuthSessionService orchestrates credential verification, lockout,
// field-encryption migration, token issuance and federated login into the
// four externally visible operations. It holds no mutable state; every
// durable fact lives in the account store.
type AuthSessionService struct {
	Store    AccountStore
	Lockout  LockoutPolicy
	Verifier CredentialVerifier
	Hasher   BcryptHasher
	Cipher   *crypto.FieldCipher
	Migrator *FieldMigrator
	Issuer   *TokenIssuer
	Broker   *FederationBroker
	Notifier notify.Notifier
}

// Login authenticates by login name and secret.
//
// The lockout check runs before the credential check: a locked account
// answers with its remaining lock time and the secret is never consulted.
// A failed check increments the failure counter and, on crossing the
// threshold, locks the account and fires the owner notification. Success
// resets the counters, migrates legacy plaintext PII, and issues a fresh
// token pair.
func (s *AuthSessionService) Login(ctx context.Context, loginName, secret string) (*Session, error) {
	acct, err := s.Store.FindByLoginName(ctx, loginName)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrLoginNameNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	if s.Lockout.State(acct.LockedUntil, now) == Locked {
		return nil, &AccountLockedError{
			RemainingSeconds: s.Lockout.RemainingSeconds(acct.LockedUntil.Time, now),
		}
	}

	if !s.Verifier.Verify(secret, acct.SecretHash.String) {
		return nil, s.recordFailure(ctx, acct, now)
	}

	// Success path: reset counters regardless of prior state.
	failed, lockedUntil := s.Lockout.OnSuccess()
	if err := s.Store.UpdateFields(ctx, acct.ID, model.AccountPatch{
		FailedAttempts: &failed,
		LockedUntil:    &lockedUntil,
	}); err != nil {
		return nil, err
	}
	s.Migrator.Migrate(ctx, acct)
	return s.openSession(ctx, acct, "login successful")
}

// recordFailure applies the lockout failure transition, persists it, and
// translates the outcome into the client-facing error. Crossing into
// Locked triggers the owner notification in the background; its result is
// deliberately ignored so notification trouble never delays or fails the
// response.
func (s *AuthSessionService) recordFailure(ctx context.Context, acct *model.Account, now time.Time) error {
	res := s.Lockout.OnFailure(acct.FailedAttempts, now)
	if err := s.Store.UpdateFields(ctx, acct.ID, model.AccountPatch{
		FailedAttempts: &res.FailedAttempts,
		LockedUntil:    &res.LockedUntil,
	}); err != nil {
		return err
	}
	if !res.JustLocked {
		return &InvalidCredentialError{AttemptsLeft: s.Lockout.AttemptsLeft(res.FailedAttempts)}
	}
	if acct.Email.Valid && acct.Email.String != "" {
		display, _ := s.Cipher.Decrypt(acct.DisplayName)
		email := acct.Email.String
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Notifier.NotifyLocked(nctx, email, display); err != nil {
				log.Printf("auth: lockout notification for account %d failed: %v", acct.ID, err)
			}
		}()
	}
	return &AccountLockedError{
		RemainingSeconds: s.Lockout.RemainingSeconds(res.LockedUntil.Time, now),
	}
}

// Register creates a password-credentialed account. The display name is
// written pre-encrypted, so new rows never need migration.
func (s *AuthSessionService) Register(ctx context.Context, in RegisterInput) (uint64, error) {
	in.LoginName = strings.TrimSpace(in.LoginName)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Sex = strings.ToLower(strings.TrimSpace(in.Sex))

	if in.LoginName == "" || in.Secret == "" || in.DisplayName == "" || in.Email == "" || in.Sex == "" {
		return 0, &ValidationError{Msg: "login_name, secret, display_name, email and sex are required"}
	}
	switch in.Sex {
	case "male", "female", "other":
	default:
		return 0, &ValidationError{Msg: "sex must be one of male, female, other"}
	}

	hash, err := s.Hasher.Hash(in.Secret)
	if err != nil {
		return 0, err
	}
	encName, err := s.Cipher.Encrypt(in.DisplayName)
	if err != nil {
		return 0, err
	}
	return s.Store.Insert(ctx, &model.Account{
		LoginName:   in.LoginName,
		SecretHash:  sql.NullString{String: hash, Valid: true},
		Email:       sql.NullString{String: in.Email, Valid: true},
		DisplayName: encName,
		Sex:         in.Sex,
		RoleFlag:    false,
	})
}

// FederatedLogin establishes a session from a third-party identity
// assertion. Lockout and the password check do not apply on this path.
func (s *AuthSessionService) FederatedLogin(ctx context.Context, identityToken, email, displayName, photoURL string) (*Session, error) {
	acct, err := s.Broker.ResolveAssertion(ctx, identityToken, email, displayName, photoURL)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, acct, "google login successful")
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthSessionService) Refresh(ctx context.Context, rawRefreshToken string) (SignedToken, error) {
	return s.Issuer.RotateFromRefresh(ctx, rawRefreshToken)
}

// openSession mints the token pair, overwrites the refresh slot, stamps
// last_login and assembles the client payload with the display name
// decrypted for display.
func (s *AuthSessionService) openSession(ctx context.Context, acct *model.Account, message string) (*Session, error) {
	access, err := s.Issuer.IssueAccessToken(acct.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issuer.IssueRefreshToken(acct.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Issuer.PersistRefreshToken(ctx, acct.ID, refresh.Token); err != nil {
		return nil, err
	}
	display, _ := s.Cipher.Decrypt(acct.DisplayName)
	return &Session{
		Message: message,
		User: UserSummary{
			ID:          acct.ID,
			DisplayName: display,
			RoleFlag:    acct.RoleFlag,
			Avatar:      acct.AvatarURL.String,
		},
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	}, nil
}
