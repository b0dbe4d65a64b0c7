// File: internal/infra/security/encryption_service_test.go
package security

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("NewEncryptionService: %v", err)
	}

	plain := `{"sessions":[{"id":"s1","title":"hello"}],"currentId":"s1"}`
	ct, err := svc.Encrypt(plain)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ct == plain {
		t.Fatal("ciphertext equals plaintext")
	}
	got, err := svc.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != plain {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestEncryptNonceVariance(t *testing.T) {
	svc, _ := NewEncryptionService("0123456789abcdef")
	a, _ := svc.Encrypt("same input")
	b, _ := svc.Encrypt("same input")
	if a == b {
		t.Fatal("ciphertexts must differ per message")
	}
}

func TestDecryptRejectsTamper(t *testing.T) {
	svc, _ := NewEncryptionService("0123456789abcdef")
	ct, _ := svc.Encrypt("payload")

	if _, err := svc.Decrypt("not base64 !!!"); err == nil {
		t.Fatal("expected error for malformed input")
	}
	if _, err := svc.Decrypt(""); err == nil {
		t.Fatal("expected error for empty input")
	}
	// Flip a character in the body.
	tampered := []byte(ct)
	idx := len(tampered) - 2
	if tampered[idx] == 'A' {
		tampered[idx] = 'B'
	} else {
		tampered[idx] = 'A'
	}
	if _, err := svc.Decrypt(string(tampered)); err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
}

func TestKeyLengthValidation(t *testing.T) {
	for _, key := range []string{"", "short", strings.Repeat("k", 33)} {
		if _, err := NewEncryptionService(key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
	for _, key := range []string{strings.Repeat("k", 16), strings.Repeat("k", 24), strings.Repeat("k", 32)} {
		if _, err := NewEncryptionService(key); err != nil {
			t.Fatalf("key length %d should be accepted: %v", len(key), err)
		}
	}
}
