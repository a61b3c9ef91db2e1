package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/minhle/coursehub-auth/internal/crypto"
	"github.com/minhle/coursehub-auth/internal/model"
	"github.com/minhle/coursehub-auth/internal/repository"
)

// IdentityVerifier validates a third-party identity assertion and returns
// the email the provider vouches for.
type IdentityVerifier interface {
	Verify(ctx context.Context, identityToken string) (email string, err error)
}

// GoogleVerifier validates Google ID tokens against the configured OAuth
// client id.
type GoogleVerifier struct{ ClientID string }

func (g *GoogleVerifier) Verify(ctx context.Context, identityToken string) (string, error) {
	payload, err := idtoken.Validate(ctx, identityToken, g.ClientID)
	if err != nil {
		return "", err
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return "", errors.New("identity token carries no email claim")
	}
	return email, nil
}

// FederationBroker establishes a local account from a third-party identity
// assertion. It bypasses password verification and lockout entirely; the
// provider's assertion is the credential.
type FederationBroker struct {
	Store    AccountStore
	Verifier IdentityVerifier
	Migrator *FieldMigrator
	Cipher   *crypto.FieldCipher
}

// ResolveAssertion verifies the assertion and finds or creates the local
// account for it. The claimed email must equal the provider-asserted one:
// a client cannot pick which account to join by lying about its email.
// Repeated logins with the same provider identity converge on one account:
// lookup is by email, and a duplicate-key race on create falls back to
// re-reading the row the other request inserted.
func (b *FederationBroker) ResolveAssertion(ctx context.Context, identityToken, claimedEmail, displayName, photoURL string) (*model.Account, error) {
	providerEmail, err := b.Verifier.Verify(ctx, identityToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamIdentity, err)
	}
	providerEmail = strings.ToLower(strings.TrimSpace(providerEmail))
	if !strings.EqualFold(strings.TrimSpace(claimedEmail), providerEmail) {
		return nil, ErrEmailMismatch
	}

	acct, err := b.Store.FindByEmail(ctx, providerEmail)
	if err == nil {
		b.Migrator.Migrate(ctx, acct)
		return acct, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}
	return b.createAccount(ctx, providerEmail, displayName, photoURL)
}

func (b *FederationBroker) createAccount(ctx context.Context, email, displayName, photoURL string) (*model.Account, error) {
	if displayName == "" {
		// No asserted name: fall back to the email local-part.
		displayName = strings.SplitN(email, "@", 2)[0]
	}
	encName, err := b.Cipher.Encrypt(displayName)
	if err != nil {
		return nil, err
	}
	acct := &model.Account{
		LoginName:   email, // federated accounts sign in by email
		Email:       sql.NullString{String: email, Valid: true},
		DisplayName: encName,
		Sex:         "male",
		RoleFlag:    false,
	}
	if photoURL != "" {
		acct.AvatarURL = sql.NullString{String: photoURL, Valid: true}
	}
	id, err := b.Store.Insert(ctx, acct)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrLoginNameExists) {
			// Lost a create race with a concurrent federated login for the
			// same identity; converge on the row that won.
			return b.Store.FindByEmail(ctx, email)
		}
		return nil, err
	}
	acct.ID = id
	return acct, nil
}
