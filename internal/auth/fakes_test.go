package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/minhle/coursehub-auth/internal/model"
	"github.com/minhle/coursehub-auth/internal/repository"
)

// fakeStore is an in-memory AccountStore. It applies patches the way the
// SQL repository does and returns copies, so callers mutating an account
// in memory do not implicitly persist anything.
type fakeStore struct {
	mu       sync.Mutex
	accounts map[uint64]*model.Account
	nextID   uint64

	insertErr error // injected Insert failure
	updateErr error // injected UpdateFields failure
	patches   []model.AccountPatch
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[uint64]*model.Account), nextID: 1}
}

func (s *fakeStore) seed(a *model.Account) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
	}
	s.accounts[a.ID] = a
	return a
}

func (s *fakeStore) get(id uint64) *model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[id]
}

func copyAccount(a *model.Account) *model.Account {
	c := *a
	return &c
}

func (s *fakeStore) FindByLoginName(ctx context.Context, loginName string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.LoginName == loginName {
			return copyAccount(a), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (s *fakeStore) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.Email.Valid && strings.EqualFold(a.Email.String, email) {
			return copyAccount(a), nil
		}
	}
	return nil, repository.ErrAccountNotFound
}

func (s *fakeStore) FindByID(ctx context.Context, id uint64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		return copyAccount(a), nil
	}
	return nil, repository.ErrAccountNotFound
}

func (s *fakeStore) Insert(ctx context.Context, a *model.Account) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	for _, existing := range s.accounts {
		if existing.LoginName == a.LoginName {
			return 0, repository.ErrLoginNameExists
		}
		if a.Email.Valid && existing.Email.Valid && strings.EqualFold(existing.Email.String, a.Email.String) {
			return 0, repository.ErrEmailExists
		}
	}
	c := copyAccount(a)
	c.ID = s.nextID
	s.nextID++
	s.accounts[c.ID] = c
	return c.ID, nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, id uint64, p model.AccountPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	a, ok := s.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	s.patches = append(s.patches, p)
	if p.DisplayName != nil {
		a.DisplayName = *p.DisplayName
	}
	if p.Bio != nil {
		a.Bio.String = *p.Bio
		a.Bio.Valid = true
	}
	if p.FailedAttempts != nil {
		a.FailedAttempts = *p.FailedAttempts
	}
	if p.LockedUntil != nil {
		a.LockedUntil = *p.LockedUntil
	}
	if p.RefreshTokenHash != nil {
		a.RefreshTokenHash = *p.RefreshTokenHash
	}
	if p.LastLogin != nil {
		a.LastLogin = *p.LastLogin
	}
	return nil
}

// fakeVerifier is a CredentialVerifier that records how often it was
// consulted, so tests can prove the lockout short-circuit.
type fakeVerifier struct {
	result bool
	calls  int
}

func (v *fakeVerifier) Verify(secret, storedHash string) bool {
	v.calls++
	return v.result
}

// fakeNotifier records lockout notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []struct{ Email, DisplayName string }
}

func (n *fakeNotifier) NotifyLocked(ctx context.Context, email, displayName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, struct{ Email, DisplayName string }{email, displayName})
	return nil
}

func (n *fakeNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

// fakeIdentityVerifier asserts a fixed provider email or fails.
type fakeIdentityVerifier struct {
	email string
	err   error
	calls int
}

func (v *fakeIdentityVerifier) Verify(ctx context.Context, identityToken string) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	return v.email, nil
}
