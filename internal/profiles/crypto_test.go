package profiles

import (
	"strings"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte(`{"current_profile":"main","profiles":{"main":{"-g":"go"}}}`)
	envelope, err := encryptPlaintext(plaintext, "correct horse")
	if err != nil {
		t.Fatalf("encryptPlaintext() error = %v", err)
	}
	if !isEncryptedEnvelope(envelope) {
		t.Fatal("isEncryptedEnvelope() = false on freshly-encrypted data")
	}
	got, err := decryptEnvelope(envelope, "correct horse")
	if err != nil {
		t.Fatalf("decryptEnvelope() error = %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("decrypted = %q, want %q", got, plaintext)
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	envelope, err := encryptPlaintext([]byte(`{}`), "pw")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decryptEnvelope(envelope, "pw2"); !IsEncryptionError(err) {
		t.Fatalf("decryptEnvelope(wrong pw) error = %v, want ErrEncryption", err)
	}
}

func TestDecryptMissingPassphraseFails(t *testing.T) {
	envelope, err := encryptPlaintext([]byte(`{}`), "pw")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decryptEnvelope(envelope, ""); !IsEncryptionError(err) {
		t.Fatalf("decryptEnvelope(\"\") error = %v, want ErrEncryption", err)
	}
}

func TestDecryptUnsupportedVersionFails(t *testing.T) {
	envelope, err := encryptPlaintext([]byte(`{}`), "pw")
	if err != nil {
		t.Fatal(err)
	}
	// Bump the version field so the envelope stays valid JSON but fails
	// the version check.
	tampered := []byte(strings.Replace(string(envelope), `"version": 1`, `"version": 2`, 1))
	if _, err := decryptEnvelope(tampered, "pw"); !IsEncryptionError(err) {
		t.Fatalf("decryptEnvelope(bad version) error = %v, want ErrEncryption", err)
	}
}

func TestIsEncryptedEnvelopeFalseForPlaintext(t *testing.T) {
	if isEncryptedEnvelope([]byte(`{"current_profile":"main","profiles":{}}`)) {
		t.Fatal("isEncryptedEnvelope() = true for plaintext doc")
	}
}
