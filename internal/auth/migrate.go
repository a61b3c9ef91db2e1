package auth

import (
	"context"
	"log"

	"github.com/minhle/coursehub-auth/internal/crypto"
	"github.com/minhle/coursehub-auth/internal/model"
)

// FieldMigrator converts legacy plaintext PII columns to the encrypted
// envelope format the first time an account is touched, instead of in a
// bulk offline pass. It runs on successful login and on federated login;
// registration writes new rows pre-encrypted so it never needs migration.
type FieldMigrator struct {
	Cipher *crypto.FieldCipher
	Store  AccountStore
}

// Migrate re-encrypts the account's display name and bio in place when they
// are legacy plaintext, detected by the absence of the envelope separator;
// that same check makes a second run a no-op. The in-memory account is updated
// first so the current response is correct even when the store write fails;
// persistence failures are logged and swallowed, and the next login simply
// retries.
func (m *FieldMigrator) Migrate(ctx context.Context, a *model.Account) {
	var patch model.AccountPatch

	if a.DisplayName != "" && !crypto.IsEncrypted(a.DisplayName) {
		enc, err := m.Cipher.Encrypt(a.DisplayName)
		if err != nil {
			log.Printf("field-migrator: encrypt display_name for account %d failed: %v", a.ID, err)
		} else {
			a.DisplayName = enc
			patch.DisplayName = &enc
		}
	}
	if a.Bio.Valid && a.Bio.String != "" && !crypto.IsEncrypted(a.Bio.String) {
		enc, err := m.Cipher.Encrypt(a.Bio.String)
		if err != nil {
			log.Printf("field-migrator: encrypt bio for account %d failed: %v", a.ID, err)
		} else {
			a.Bio.String = enc
			patch.Bio = &enc
		}
	}
	if patch.IsEmpty() {
		return
	}
	if err := m.Store.UpdateFields(ctx, a.ID, patch); err != nil {
		log.Printf("field-migrator: persist for account %d failed: %v", a.ID, err)
	}
}
