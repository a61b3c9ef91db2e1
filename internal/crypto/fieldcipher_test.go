package crypto

import (
	"strings"
	"testing"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574" // 32 bytes

func newTestCipher(t *testing.T) *FieldCipher {
	t.Helper()
	f, err := NewFieldCipher(testKey)
	if err != nil {
		t.Fatalf("NewFieldCipher() error = %v", err)
	}
	return f
}

func TestNewFieldCipher_KeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		hexKey  string
		wantErr bool
	}{
		{name: "valid 32-byte key", hexKey: testKey, wantErr: false},
		{name: "not hex", hexKey: "zz", wantErr: true},
		{name: "too short", hexKey: "deadbeef", wantErr: true},
		{name: "empty", hexKey: "", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewFieldCipher(test.hexKey)
			if (err != nil) != test.wantErr {
				t.Fatalf("NewFieldCipher() error = %v, wantErr %v", err, test.wantErr)
			}
		})
	}
}

// Requirement: decrypt(encrypt(x)) == x for all non-empty strings.
func TestFieldCipher_RoundTrip(t *testing.T) {
	f := newTestCipher(t)
	for _, plain := range []string{
		"Alice",
		"a",
		"một chuỗi tiếng Việt có dấu",
		strings.Repeat("x", 1000),
		"exactly sixteen!", // one full block, forces a full padding block
		"contains : colon", // plaintext with the marker survives the round trip
	} {
		env, err := f.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", plain, err)
		}
		if !IsEncrypted(env) {
			t.Fatalf("Encrypt(%q) = %q, missing separator", plain, env)
		}
		got, ok := f.Decrypt(env)
		if !ok {
			t.Fatalf("Decrypt(%q) reported no decryption", env)
		}
		if got != plain {
			t.Errorf("round trip = %q, want %q", got, plain)
		}
	}
}

// Requirement: encrypting the empty value is a no-op, no envelope produced.
func TestFieldCipher_EncryptEmpty(t *testing.T) {
	f := newTestCipher(t)
	env, err := f.Encrypt("")
	if err != nil {
		t.Fatalf("Encrypt(\"\") error = %v", err)
	}
	if env != "" {
		t.Errorf("Encrypt(\"\") = %q, want empty", env)
	}
}

// Requirement: a fresh IV per call means equal plaintexts never share an envelope.
func TestFieldCipher_RandomIV(t *testing.T) {
	f := newTestCipher(t)
	a, err := f.Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two encryptions of the same plaintext produced identical envelopes")
	}
}

// Requirement: Decrypt is the identity on anything that is not a well-formed
// envelope, and reports that no decryption happened.
func TestFieldCipher_DecryptFallback(t *testing.T) {
	f := newTestCipher(t)
	tests := []struct {
		name  string
		value string
	}{
		{name: "legacy plaintext without separator", value: "Alice"},
		{name: "empty", value: ""},
		{name: "too many parts", value: "aa:bb:cc"},
		{name: "bad hex iv", value: "zz:00112233445566778899aabbccddeeff"},
		{name: "short iv", value: "abcd:00112233445566778899aabbccddeeff"},
		{name: "bad hex ciphertext", value: "00112233445566778899aabbccddeeff:zz"},
		{name: "ciphertext not block aligned", value: "00112233445566778899aabbccddeeff:abcd"},
		{name: "empty ciphertext", value: "00112233445566778899aabbccddeeff:"},
		{name: "garbage blocks fail padding", value: "00112233445566778899aabbccddeeff:00112233445566778899aabbccddeeff"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := f.Decrypt(test.value)
			if ok {
				t.Errorf("Decrypt(%q) claimed success", test.value)
			}
			if got != test.value {
				t.Errorf("Decrypt(%q) = %q, want input unchanged", test.value, got)
			}
		})
	}
}

// A value encrypted under one key must fall back, not error, under another.
func TestFieldCipher_WrongKeyReturnsOriginal(t *testing.T) {
	f := newTestCipher(t)
	other, err := NewFieldCipher("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	if err != nil {
		t.Fatal(err)
	}
	env, err := f.Encrypt("Alice")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := other.Decrypt(env)
	if ok && got == "Alice" {
		t.Fatalf("decryption under the wrong key recovered the plaintext")
	}
	if !ok && got != env {
		t.Errorf("failed decryption must return the stored value unchanged")
	}
}
