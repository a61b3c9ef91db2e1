package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/minhle/coursehub-auth/internal/model"
)

// AccountRepo reads and writes rows of the 'accounts' table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,login_name,secret_hash,email,display_name,bio,avatar_url,sex,role_flag,failed_attempts,locked_until,refresh_token_hash,last_login,created_at,updated_at"

func scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.LoginName, &a.SecretHash, &a.Email, &a.DisplayName,
		&a.Bio, &a.AvatarURL, &a.Sex, &a.RoleFlag, &a.FailedAttempts,
		&a.LockedUntil, &a.RefreshTokenHash, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByLoginName fetches an account by its exact login name.
func (r *AccountRepo) FindByLoginName(ctx context.Context, loginName string) (*model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE login_name=? LIMIT 1", loginName))
}

// FindByEmail fetches an account by normalized email. Email is the join key
// for federated logins.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email))
}

// FindByID fetches an account by primary key.
func (r *AccountRepo) FindByID(ctx context.Context, id uint64) (*model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id))
}

// Insert stores a new account and returns its assigned id. Unique-key
// collisions (MySQL error 1062) are mapped to the per-key sentinels so
// registration can report which field is taken.
func (r *AccountRepo) Insert(ctx context.Context, a *model.Account) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO accounts
		 (login_name, secret_hash, email, display_name, bio, avatar_url, sex, role_flag, failed_attempts, locked_until, refresh_token_hash, last_login)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.LoginName, a.SecretHash, a.Email, a.DisplayName, a.Bio, a.AvatarURL,
		a.Sex, a.RoleFlag, a.FailedAttempts, a.LockedUntil, a.RefreshTokenHash, a.LastLogin)
	if err != nil {
		if dup := duplicateKeyError(err); dup != nil {
			return 0, dup
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateFields applies a partial update to a single row. Only columns with a
// non-nil pointer in the patch appear in the SET clause; a sql.Null* value
// with Valid=false writes NULL. An empty patch is a no-op.
func (r *AccountRepo) UpdateFields(ctx context.Context, id uint64, p model.AccountPatch) error {
	if p.IsEmpty() {
		return nil
	}
	var (
		sets []string
		args []interface{}
	)
	add := func(col string, v interface{}) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.DisplayName != nil {
		add("display_name", *p.DisplayName)
	}
	if p.Bio != nil {
		add("bio", *p.Bio)
	}
	if p.FailedAttempts != nil {
		add("failed_attempts", *p.FailedAttempts)
	}
	if p.LockedUntil != nil {
		add("locked_until", *p.LockedUntil)
	}
	if p.RefreshTokenHash != nil {
		add("refresh_token_hash", *p.RefreshTokenHash)
	}
	if p.LastLogin != nil {
		add("last_login", *p.LastLogin)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id=?", strings.Join(sets, ", "))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	// RowsAffected is zero both for a missing row and for an update that
	// changed nothing; only report the former.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id=? LIMIT 1", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrAccountNotFound
		}
	}
	return nil
}

// duplicateKeyError maps a MySQL duplicate-entry error to the sentinel for
// the violated unique key, or returns nil for any other error.
func duplicateKeyError(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	switch {
	case strings.Contains(msg, "login_name"):
		return ErrLoginNameExists
	case strings.Contains(msg, "email"):
		return ErrEmailExists
	default:
		return ErrLoginNameExists
	}
}
