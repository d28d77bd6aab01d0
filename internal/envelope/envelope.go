package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters. The salt is shared by every installation, so the
// derived key depends on the passphrase alone.
const (
	pbkdf2Iterations = 100000
	keyLen           = 32
	NonceSize        = 12
)

var fixedSalt = []byte("pn-salt-v1")

// DefaultPassphrase is used when no passphrase has been stored.
const DefaultPassphrase = "premium-notes-default-pass"

var (
	errShortEnvelope = errors.New("envelope shorter than nonce")
	errNilKey        = errors.New("nil key")
)

// Key is a derived AES-256-GCM key. The raw key material stays inside.
type Key struct {
	aead cipher.AEAD
}

// DeriveKey runs PBKDF2-HMAC-SHA256 over the passphrase and returns a key that
// can only be used through Encrypt and Decrypt.
func DeriveKey(passphrase string) (*Key, error) {
	raw := pbkdf2.Key([]byte(passphrase), fixedSalt, pbkdf2Iterations, keyLen, sha256.New)

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Key{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// base64(nonce || ciphertext+tag).
func Encrypt(key *Key, plaintext string) (string, error) {
	if key == nil {
		return "", errNilKey
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := key.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. Any failure (bad base64,
// truncated input, wrong key, tampering) yields "". Callers must read an empty
// result as "content unavailable", not as empty content.
func Decrypt(key *Key, envelope string) string {
	plain, err := Open(key, envelope)
	if err != nil {
		return ""
	}
	return plain
}

// Open is Decrypt with the failure reason kept, for callers that log it.
func Open(key *Key, envelope string) (string, error) {
	if key == nil {
		return "", errNilKey
	}

	data, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("failed to decode envelope: %w", err)
	}
	if len(data) < NonceSize {
		return "", errShortEnvelope
	}

	plain, err := key.aead.Open(nil, data[:NonceSize], data[NonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt envelope: %w", err)
	}

	return string(plain), nil
}
