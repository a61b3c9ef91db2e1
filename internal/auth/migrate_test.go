package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/minhle/coursehub-auth/internal/crypto"
	"github.com/minhle/coursehub-auth/internal/model"
)

const cipherKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func newTestCipher(t *testing.T) *crypto.FieldCipher {
	t.Helper()
	c, err := crypto.NewFieldCipher(cipherKey)
	if err != nil {
		t.Fatalf("NewFieldCipher() error = %v", err)
	}
	return c
}

// Requirement: legacy plaintext fields are encrypted in place, persisted,
// and the decrypted view still matches the original value.
func TestFieldMigrator_MigratesLegacyPlaintext(t *testing.T) {
	store := newFakeStore()
	cipher := newTestCipher(t)
	acct := store.seed(&model.Account{
		LoginName:   "alice",
		DisplayName: "Alice",
		Bio:         sql.NullString{String: "I teach Android basics", Valid: true},
	})
	m := &FieldMigrator{Cipher: cipher, Store: store}

	loaded, _ := store.FindByID(context.Background(), acct.ID)
	m.Migrate(context.Background(), loaded)

	if !crypto.IsEncrypted(loaded.DisplayName) {
		t.Errorf("in-memory display name not migrated: %q", loaded.DisplayName)
	}
	if !crypto.IsEncrypted(loaded.Bio.String) {
		t.Errorf("in-memory bio not migrated: %q", loaded.Bio.String)
	}

	stored := store.get(acct.ID)
	if !crypto.IsEncrypted(stored.DisplayName) {
		t.Errorf("stored display name not migrated: %q", stored.DisplayName)
	}
	if got, ok := cipher.Decrypt(stored.DisplayName); !ok || got != "Alice" {
		t.Errorf("Decrypt(stored display name) = %q, %v; want \"Alice\", true", got, ok)
	}
	if got, ok := cipher.Decrypt(stored.Bio.String); !ok || got != "I teach Android basics" {
		t.Errorf("Decrypt(stored bio) = %q, %v", got, ok)
	}
}

// Requirement: a second run is a no-op; the envelope separator marks the
// value as already migrated.
func TestFieldMigrator_Idempotent(t *testing.T) {
	store := newFakeStore()
	acct := store.seed(&model.Account{LoginName: "alice", DisplayName: "Alice"})
	m := &FieldMigrator{Cipher: newTestCipher(t), Store: store}

	first, _ := store.FindByID(context.Background(), acct.ID)
	m.Migrate(context.Background(), first)
	afterFirst := store.get(acct.ID).DisplayName

	second, _ := store.FindByID(context.Background(), acct.ID)
	m.Migrate(context.Background(), second)

	if got := store.get(acct.ID).DisplayName; got != afterFirst {
		t.Errorf("second migration changed the stored value: %q -> %q", afterFirst, got)
	}
	if len(store.patches) != 1 {
		t.Errorf("second migration wrote to the store: %d patches, want 1", len(store.patches))
	}
}

// Requirement: a store-write failure is swallowed; the in-memory value is
// still migrated so the current response is correct, and the next login
// retries.
func TestFieldMigrator_StoreFailureSwallowed(t *testing.T) {
	store := newFakeStore()
	acct := store.seed(&model.Account{LoginName: "alice", DisplayName: "Alice"})
	store.updateErr = errors.New("connection lost")
	m := &FieldMigrator{Cipher: newTestCipher(t), Store: store}

	loaded, _ := store.FindByID(context.Background(), acct.ID)
	m.Migrate(context.Background(), loaded) // must not panic or surface the error

	if !crypto.IsEncrypted(loaded.DisplayName) {
		t.Errorf("in-memory value must be migrated even when persistence fails")
	}
	if crypto.IsEncrypted(store.get(acct.ID).DisplayName) {
		t.Errorf("stored value should be unchanged after a failed write")
	}
}

// Empty and already-encrypted fields are left alone entirely.
func TestFieldMigrator_SkipsEmptyAndEncrypted(t *testing.T) {
	store := newFakeStore()
	cipher := newTestCipher(t)
	enc, err := cipher.Encrypt("Bob")
	if err != nil {
		t.Fatal(err)
	}
	acct := store.seed(&model.Account{LoginName: "bob", DisplayName: enc})
	m := &FieldMigrator{Cipher: cipher, Store: store}

	loaded, _ := store.FindByID(context.Background(), acct.ID)
	m.Migrate(context.Background(), loaded)

	if len(store.patches) != 0 {
		t.Errorf("migration wrote %d patches for an already-encrypted account, want 0", len(store.patches))
	}
	if loaded.DisplayName != enc {
		t.Errorf("already-encrypted value changed: %q -> %q", enc, loaded.DisplayName)
	}
}
