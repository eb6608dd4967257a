// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Sharing conflicts. The three duplicate cases carry distinct,
	// stable messages because the boundary surfaces them verbatim.
	ErrorAlreadyShared     = errors.New("file shared with this user already")
	ErrorDeptAlreadyShared = errors.New("file shared with this department already")
	ErrorRequestExists     = errors.New("share request already pending")
	ErrorDuplicateName     = errors.New("a file with the same name already exists")

	// ErrorDuplicateNameAtOwner marks a rename collision hit by a grantee:
	// the clash is in the owner's namespace, not the caller's, and the
	// message says so.
	ErrorDuplicateNameAtOwner = errors.New("a file with the same name already exists at the owner side")

	// ErrorNoChanges is success-shaped: the update matched current state.
	ErrorNoChanges = errors.New("no changes made")

	// Crypto and content-store errors.
	ErrKeyFormat       = errors.New("malformed key material")
	ErrDecryption      = errors.New("decryption failed")
	ErrContentNotFound = errors.New("content not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
