package profiles

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

const (
	envelopeVersion = 1
	saltSize        = 16
	nonceSize       = 12
	keySize         = 32
	pbkdf2Iters     = 200_000
)

// envelope is the on-disk shape of an encrypted profiles file (spec §6).
type envelope struct {
	Encrypted bool   `json:"encrypted"`
	Version   int    `json:"version"`
	Salt      string `json:"salt"`
	Nonce     string `json:"nonce"`
	Data      string `json:"data"`
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iters, keySize, sha256.New)
}

// encryptPlaintext wraps plaintext in an encrypted envelope using
// AES-GCM with a PBKDF2-HMAC-SHA256 derived key, a random per-file salt,
// and a random per-write nonce (spec §4.3).
func encryptPlaintext(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "generate salt")
	}
	key := deriveKey(passphrase, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "new cipher")
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Wrap(err, "new gcm")
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)

	env := envelope{
		Encrypted: true,
		Version:   envelopeVersion,
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Nonce:     base64.StdEncoding.EncodeToString(nonce),
		Data:      base64.StdEncoding.EncodeToString(ciphertext),
	}
	return json.MarshalIndent(env, "", "  ")
}

// decryptEnvelope recovers the plaintext JSON payload from raw (the bytes
// of an encrypted profiles file) using passphrase. Any failure — missing
// passphrase, wrong passphrase, bad version, malformed fields, failed
// AEAD tag — surfaces as ErrEncryption.
func decryptEnvelope(raw []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, newEncryptionError("passphrase required", nil)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, newEncryptionError("malformed envelope", err)
	}
	if env.Version != envelopeVersion {
		return nil, newEncryptionError("unsupported envelope version", nil)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, newEncryptionError("malformed salt", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, newEncryptionError("malformed nonce", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return nil, newEncryptionError("malformed ciphertext", err)
	}

	key := deriveKey(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newEncryptionError("new cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, newEncryptionError("new gcm", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong passphrase and corrupt ciphertext are indistinguishable
		// at the AEAD layer — both fail tag verification.
		return nil, newEncryptionError("authentication failed (wrong passphrase or corrupt file)", err)
	}
	return plaintext, nil
}

// isEncryptedEnvelope reports whether raw looks like an encrypted
// profiles file rather than the plaintext shape.
func isEncryptedEnvelope(raw []byte) bool {
	var probe struct {
		Encrypted bool `json:"encrypted"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	return probe.Encrypted
}
