// Package storage implements the content-addressable store for ciphertext
// blobs. Content is addressed by the sha256 digest of the stored bytes and
// is immutable once put; the store never learns ownership or ACL state.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// ContentStore persists opaque blobs by content identifier.
type ContentStore interface {
	// Put persists the blob and returns its content identifier.
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the blob for the identifier, or common.ErrContentNotFound
	// when the backend does not know it.
	Get(ctx context.Context, cid string) ([]byte, error)
}

// ContentID computes the content identifier for a blob: the hex sha256
// digest of its bytes. Each file is encrypted under its own key, so stored
// blobs never collide in practice; dedup is incidental, not relied upon.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
