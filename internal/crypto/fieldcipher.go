// Package crypto implements the at-rest encryption of individual PII text
// fields.  Values are encrypted with AES-256-CBC under a process-wide key
// and stored as "hex(iv):hex(ciphertext)".  The ':' separator doubles as
// the structural marker that distinguishes an encrypted envelope from a
// legacy plaintext value, which is what makes lazy migration possible.
package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Separator splits the IV from the ciphertext inside an envelope.  A stored
// value containing it is treated as already encrypted.  This is a heuristic,
// not a cryptographic guarantee: a legacy plaintext that happens to contain
// a colon will be mistaken for an envelope and returned as-is.
const Separator = ":"

// FieldCipher encrypts and decrypts single text fields.  The key is fixed
// for the process lifetime; rotating it invalidates every previously
// encrypted value.
type FieldCipher struct {
	key []byte
}

// NewFieldCipher builds a cipher from a hex-encoded 32-byte key (64 hex
// characters), matching the AES-256 key length.
func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	return &FieldCipher{key: key}, nil
}

// Encrypt returns the envelope form of plain.  Empty input is returned
// unchanged: empty fields are never encrypted.  A fresh random IV is drawn
// per call so equal plaintexts produce different envelopes.
func (f *FieldCipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return plain, nil
	}
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return "", err
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("draw iv: %w", err)
	}
	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return hex.EncodeToString(iv) + Separator + hex.EncodeToString(out), nil
}

// Decrypt returns the plaintext of an envelope.  The second return value
// reports whether decryption actually happened: values without the
// separator (legacy plaintext), malformed envelopes and undecipherable
// data are returned unchanged with false.  Decrypt never fails: corrupt
// or foreign data must not take logins down.
func (f *FieldCipher) Decrypt(value string) (string, bool) {
	if value == "" || !strings.Contains(value, Separator) {
		return value, false
	}
	parts := strings.Split(value, Separator)
	if len(parts) != 2 {
		return value, false
	}
	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return value, false
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil || len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return value, false
	}
	block, err := aes.NewCipher(f.key)
	if err != nil {
		return value, false
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok {
		return value, false
	}
	return string(unpadded), true
}

// IsEncrypted reports whether a stored value carries the structural marker.
func IsEncrypted(value string) bool {
	return strings.Contains(value, Separator)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, bool) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
