// Package models defines server-side data models persisted in the database,
// plus the joined view rows returned by the listing queries.
package models

import "time"

// File describes metadata for an uploaded file. The ciphertext itself lives
// in the content-addressable store under CID; the per-file key is persisted
// only in wrapped form. CID and WrappedKey are set at creation and never
// mutated; only Name and Description are mutable.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"file_name"`
	Description string    `json:"file_description"`
	Size        int64     `json:"file_size"`
	Mime        string    `json:"file_mime"`
	CID         string    `json:"-"`
	WrappedKey  string    `json:"-"`
	OwnerID     string    `json:"uploaded_by_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DiscoverableFile is a file owned by someone else that the caller may
// request access to, with the owner's display name joined in.
type DiscoverableFile struct {
	File
	OwnerName string `json:"name"`
}

// FileContent is a decrypted download: the plaintext plus the headers the
// boundary needs to serve it.
type FileContent struct {
	Name string
	Mime string
	Data []byte
}
