package cryptox

import (
	"fmt"

	"filevault/internal/common"
)

// Encrypt seals plaintext with AES-GCM under the given key. The result is
// self-contained: a fresh random nonce is prepended to the ciphertext, so
// the blob carries everything needed for decryption except the key.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())

	// Seal appends to nonce, producing nonce || ciphertext || tag.
	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt. Truncated framing, a wrong key
// or tampered ciphertext all yield common.ErrDecryption; partial plaintext
// is never returned.
func Decrypt(blob, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < aesgcm.NonceSize() {
		return nil, fmt.Errorf("%w: blob shorter than nonce", common.ErrDecryption)
	}

	nonce, ciphertext := blob[:aesgcm.NonceSize()], blob[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return plaintext, nil
}
