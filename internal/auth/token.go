package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/minhle/coursehub-auth/internal/model"
	"github.com/minhle/coursehub-auth/internal/repository"
)

// SignedToken is a serialized JWT together with its expiry.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// TokenIssuer mints and verifies the two session tokens. Access and
// refresh tokens are HS256 JWTs whose claims carry only the account id;
// they are signed with distinct secrets, so one kind never validates as
// the other. Only the most recently issued refresh token is valid: its
// hash overwrites the account's single refresh slot on every login.
type TokenIssuer struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	BcryptCost    int
	Store         AccountStore
}

// IssueAccessToken mints a short-lived access token for an account.
func (i *TokenIssuer) IssueAccessToken(accountID uint64) (SignedToken, error) {
	return sign(i.AccessSecret, accountID, i.AccessTTL)
}

// IssueRefreshToken mints a long-lived refresh token for an account.
func (i *TokenIssuer) IssueRefreshToken(accountID uint64) (SignedToken, error) {
	return sign(i.RefreshSecret, accountID, i.RefreshTTL)
}

// PersistRefreshToken overwrites the account's refresh slot with the hash
// of the raw token and stamps last_login. Storing only a hash keeps a
// stolen database dump from refreshing sessions.
func (i *TokenIssuer) PersistRefreshToken(ctx context.Context, accountID uint64, raw string) error {
	hash, err := i.hashRefresh(raw)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return i.Store.UpdateFields(ctx, accountID, model.AccountPatch{
		RefreshTokenHash: &sql.NullString{String: hash, Valid: true},
		LastLogin:        &sql.NullTime{Time: now, Valid: true},
	})
}

// RotateFromRefresh exchanges a valid refresh token for a new access token.
// The refresh token itself is not reissued; the single slot stays valid
// until its own expiry or until the next login overwrites it. A token that
// verifies against the refresh key but fails the stored-hash comparison is
// treated as evidence of reuse or theft: the slot is invalidated so every
// session of the account dies and a full re-login is forced.
func (i *TokenIssuer) RotateFromRefresh(ctx context.Context, raw string) (SignedToken, error) {
	accountID, err := verify(i.RefreshSecret, raw)
	if err != nil {
		return SignedToken{}, err
	}
	acct, err := i.Store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return SignedToken{}, ErrTokenNotFound
		}
		return SignedToken{}, err
	}
	if !acct.RefreshTokenHash.Valid || acct.RefreshTokenHash.String == "" {
		return SignedToken{}, ErrTokenNotFound
	}
	if !i.compareRefresh(acct.RefreshTokenHash.String, raw) {
		if err := i.Store.UpdateFields(ctx, acct.ID, model.AccountPatch{
			RefreshTokenHash: &sql.NullString{},
		}); err != nil {
			return SignedToken{}, err
		}
		return SignedToken{}, ErrTokenReused
	}
	return i.IssueAccessToken(acct.ID)
}

// VerifyAccess validates an access token and returns the account id it was
// issued for.
func (i *TokenIssuer) VerifyAccess(raw string) (uint64, error) {
	return verify(i.AccessSecret, raw)
}

func sign(secret string, accountID uint64, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": accountID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// verify parses and validates a token against one signing secret and
// extracts the account id from its subject claim. Failures collapse into
// the two terminal kinds the callers care about: expired or invalid.
func verify(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}
	if !tok.Valid {
		return 0, ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrTokenInvalid
	}
	switch sub := claims["sub"].(type) {
	case float64:
		// JSON numbers decode as float64.
		return uint64(sub), nil
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return 0, ErrTokenInvalid
		}
		return id, nil
	default:
		return 0, ErrTokenInvalid
	}
}

// hashRefresh hashes a raw refresh token with the credential comparator.
// bcrypt caps its input at 72 bytes and a serialized JWT always exceeds
// that, so the token is first reduced to its SHA-256 hex digest; the
// digest is the bcrypt input on both the write and the compare path.
func (i *TokenIssuer) hashRefresh(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(digest(raw), i.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (i *TokenIssuer) compareRefresh(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(raw)) == nil
}

func digest(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return []byte(hex.EncodeToString(sum[:]))
}
