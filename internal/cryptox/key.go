// Package cryptox implements the per-file key management and the
// authenticated encryption codec. Every stored file gets its own random
// AES-256 key; the key is wrapped under a KEK derived from the configured
// master secret before it is persisted next to the file metadata.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"filevault/internal/common"
)

// KeySize is the length of a file encryption key (AES-256).
const KeySize = 32

// GenerateKey produces a fresh random file key. Keys are never reused
// across files; losing the wrapped form makes the file irrecoverable.
func GenerateKey() ([]byte, error) {
	return common.GenerateRandByteArray(KeySize), nil
}

// SerializeKey encodes a raw key as an ASCII-safe string.
func SerializeKey(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// DeserializeKey decodes a key produced by SerializeKey. Malformed or
// truncated input yields common.ErrKeyFormat.
func DeserializeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyFormat, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: unexpected key length %d", common.ErrKeyFormat, len(key))
	}
	return key, nil
}

// DeriveKEK derives the key-encryption key from the master secret using
// argon2id. The salt is fixed per deployment (stored in config); rotating
// either value makes existing wrapped keys unreadable.
func DeriveKEK(masterSecret, salt []byte) []byte {
	return argon2.IDKey(masterSecret, salt, 1, 64*1024, 4, KeySize)
}

// KeyWrapper seals file keys under a KEK so that the metadata store only
// ever sees wrapped key material.
type KeyWrapper struct {
	kek []byte
}

// NewKeyWrapper constructs a KeyWrapper around a derived KEK.
func NewKeyWrapper(kek []byte) (*KeyWrapper, error) {
	if len(kek) != KeySize {
		return nil, fmt.Errorf("%w: kek must be %d bytes", common.ErrKeyFormat, KeySize)
	}
	return &KeyWrapper{kek: kek}, nil
}

// Wrap encrypts a file key with the KEK and returns an ASCII-safe string
// suitable for storage alongside file metadata.
func (w *KeyWrapper) Wrap(key []byte) (string, error) {
	if len(key) != KeySize {
		return "", fmt.Errorf("%w: unexpected key length %d", common.ErrKeyFormat, len(key))
	}
	sealed, err := Encrypt(key, w.kek)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Unwrap decodes and decrypts a wrapped key. Corrupted or foreign key
// material yields common.ErrKeyFormat.
func (w *KeyWrapper) Unwrap(wrapped string) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrKeyFormat, err)
	}
	key, err := Decrypt(sealed, w.kek)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap failed", common.ErrKeyFormat)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: unexpected key length %d", common.ErrKeyFormat, len(key))
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
