// Package crypto provides field-level encryption for sensitive string
// attributes (serial numbers) before they reach the store.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

// FieldCipher encrypts and decrypts individual field values with AES-256-GCM.
// The key is derived from a configured secret with SHA-256, so any process
// holding the same secret can decrypt. Encryption is non-deterministic: a
// fresh nonce is drawn per call, so equal plaintexts yield distinct
// ciphertexts. There is no key rotation or versioning.
type FieldCipher struct {
	aead cipher.AEAD
}

// New derives the field key from secret and returns a ready cipher.
func New(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("encryption secret is required")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &FieldCipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns a base64url token of nonce||ciphertext.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("draw nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt recovers the plaintext of a token produced by Encrypt. Corrupted
// tokens and tokens sealed under a different secret fail with ErrDecryption.
func (c *FieldCipher) Decrypt(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custody.ErrDecryption, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", fmt.Errorf("%w: token too short", custody.ErrDecryption)
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", custody.ErrDecryption, err)
	}
	return string(plaintext), nil
}
