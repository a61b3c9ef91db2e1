package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier checks a submitted secret against a stored hash. It is
// an interface so the orchestration tests can prove the comparison is never
// consulted while an account is locked.
type CredentialVerifier interface {
	Verify(secret, storedHash string) bool
}

// BcryptHasher hashes and verifies secrets with bcrypt at a fixed cost.
type BcryptHasher struct{ Cost int }

// Hash returns the bcrypt hash of a secret.
func (h BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether secret matches storedHash. A malformed or empty
// hash (federated-only accounts have none) simply never matches; the
// plaintext secret is never logged.
func (h BcryptHasher) Verify(secret, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}
