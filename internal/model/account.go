package model

import (
	"database/sql"
	"time"
)

// Account mirrors the `accounts` table. The store is external; this
// subsystem reads and writes only the columns below.
//
// DisplayName and Bio are PII columns stored in the field-cipher envelope
// format `hex(iv):hex(ciphertext)`. Rows created before encryption was
// introduced may still hold legacy plaintext; the migrator converts those
// the next time the account logs in.
//
// Fields:
//	ID               – primary key, assigned by the store.
//	LoginName        – unique credential identifier (distinct from the display name).
//	SecretHash       – bcrypt hash of the password; NULL for federated-only accounts.
//	Email            – unique when present; join key for federated logins.
//	DisplayName      – encrypted-at-rest display name (or legacy plaintext).
//	Bio              – optional, same encryption contract as DisplayName.
//	AvatarURL        – optional profile image URL, plaintext.
//	Sex              – one of male/female/other.
//	RoleFlag         – true for instructors, false for learners.
//	FailedAttempts   – consecutive failed-login counter.
//	LockedUntil      – login is refused while now <= this timestamp.
//	RefreshTokenHash – hash of the single currently valid refresh token.
//	LastLogin        – stamped on every successful login or federated login.
type Account struct {
	ID               uint64         // accounts.id
	LoginName        string         // accounts.login_name
	SecretHash       sql.NullString // accounts.secret_hash
	Email            sql.NullString // accounts.email
	DisplayName      string         // accounts.display_name
	Bio              sql.NullString // accounts.bio
	AvatarURL        sql.NullString // accounts.avatar_url
	Sex              string         // accounts.sex
	RoleFlag         bool           // accounts.role_flag
	FailedAttempts   int            // accounts.failed_attempts
	LockedUntil      sql.NullTime   // accounts.locked_until
	RefreshTokenHash sql.NullString // accounts.refresh_token_hash
	LastLogin        sql.NullTime   // accounts.last_login
	CreatedAt        time.Time      // accounts.created_at
	UpdatedAt        time.Time      // accounts.updated_at
}

// AccountPatch is a partial update for a single account row. A nil pointer
// leaves the column untouched; a non-nil sql.Null* with Valid=false sets
// the column to NULL.
type AccountPatch struct {
	DisplayName      *string
	Bio              *string
	FailedAttempts   *int
	LockedUntil      *sql.NullTime
	RefreshTokenHash *sql.NullString
	LastLogin        *sql.NullTime
}

// IsEmpty reports whether the patch would update no columns.
func (p AccountPatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.FailedAttempts == nil &&
		p.LockedUntil == nil && p.RefreshTokenHash == nil && p.LastLogin == nil
}
