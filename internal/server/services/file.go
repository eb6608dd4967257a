// Package services contains the server-side business logic: the file
// lifecycle, the sharing/ACL state machine, and the listing queries.
// Every precondition-then-write sequence runs inside one transaction.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"filevault/internal/common"
	"filevault/internal/cryptox"
	"filevault/internal/dbx"
	"filevault/internal/logging"
	"filevault/internal/server/models"
	"filevault/internal/server/repositories/repomanager"
	"filevault/internal/server/storage"
)

// FileService implements the file lifecycle: upload (encrypt + store +
// record), download (ACL check + fetch + decrypt), metadata edits and
// cascading delete.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ContentStore
	wrapper     *cryptox.KeyWrapper
	logger      logging.Logger
}

// NewFileService constructs a FileService.
func NewFileService(db *sql.DB, m repomanager.RepositoryManager, store storage.ContentStore,
	wrapper *cryptox.KeyWrapper, logger logging.Logger) *FileService {
	return &FileService{
		db:          db,
		repomanager: m,
		store:       store,
		wrapper:     wrapper,
		logger:      logger.With("module", "file_service"),
	}
}

// Upload encrypts the payload under a fresh key, persists the ciphertext in
// the content store, wraps the key, and records the metadata row. The
// ciphertext is put before the metadata transaction: a crash in between
// leaks at most an unreferenced blob, never a dangling file record.
func (s *FileService) Upload(ctx context.Context, callerID string, name string, description string,
	mime string, data []byte) (*models.File, error) {

	key, err := cryptox.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("key generation failed: %w", err)
	}
	defer common.WipeByteArray(key)

	blob, err := cryptox.Encrypt(data, key)
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}

	cid, err := s.store.Put(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("content store put failed: %w", err)
	}

	wrapped, err := s.wrapper.Wrap(key)
	if err != nil {
		return nil, fmt.Errorf("key wrapping failed: %w", err)
	}

	file := &models.File{
		Name:        name,
		Description: description,
		Size:        int64(len(data)),
		Mime:        mime,
		CID:         cid,
		WrappedKey:  wrapped,
		OwnerID:     callerID,
	}

	created, err := s.repomanager.Files(s.db).Create(ctx, file)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "file uploaded", "file_id", created.ID, "size", created.Size)
	return created, nil
}

// Download returns the decrypted content for the owner or any grantee;
// everyone else gets not-found. Corrupted key material or tampered
// ciphertext fail the single download, never the service.
func (s *FileService) Download(ctx context.Context, callerID string, fileID string) (*models.FileContent, error) {
	file, err := s.authorizeRead(ctx, callerID, fileID)
	if err != nil {
		return nil, err
	}

	blob, err := s.store.Get(ctx, file.CID)
	if err != nil {
		return nil, err
	}

	key, err := s.wrapper.Unwrap(file.WrappedKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	plaintext, err := cryptox.Decrypt(blob, key)
	if err != nil {
		return nil, err
	}

	return &models.FileContent{Name: file.Name, Mime: file.Mime, Data: plaintext}, nil
}

// EditMetadata renames and re-describes a file. The submitted name is a
// base name; the file's existing extension is always kept. Owners may
// always edit; grantees need the Editor permission. The collision check
// runs against the owner's namespace either way, inside the same
// transaction as the update.
func (s *FileService) EditMetadata(ctx context.Context, callerID string, fileID string,
	baseName string, description string) error {

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fileRepo := s.repomanager.Files(tx)

		file, err := fileRepo.GetByID(ctx, fileID)
		if err != nil {
			return err
		}

		if file.OwnerID != callerID {
			grant, err := s.repomanager.Shares(tx).GetForUser(ctx, fileID, callerID)
			if err != nil {
				return err
			}
			if grant.Permission != models.PermissionEditor {
				return common.ErrorNotFound
			}
		}

		newName := baseName + filepath.Ext(file.Name)
		if newName == file.Name && description == file.Description {
			return common.ErrorNoChanges
		}

		exists, err := fileRepo.NameExists(ctx, file.OwnerID, newName, file.ID)
		if err != nil {
			return err
		}
		if exists {
			if file.OwnerID != callerID {
				return common.ErrorDuplicateNameAtOwner
			}
			return common.ErrorDuplicateName
		}

		return fileRepo.UpdateMetadata(ctx, file.ID, newName, description)
	})
}

// Delete removes a file owned by the caller together with all its grants
// and pending requests, in one transaction.
func (s *FileService) Delete(ctx context.Context, callerID string, fileID string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		file, err := s.repomanager.Files(tx).GetOwned(ctx, fileID, callerID)
		if err != nil {
			return err
		}

		if err := s.repomanager.Shares(tx).DeleteByFile(ctx, file.ID); err != nil {
			return err
		}
		if err := s.repomanager.ShareRequests(tx).DeleteByFile(ctx, file.ID); err != nil {
			return err
		}
		return s.repomanager.Files(tx).Delete(ctx, file.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "file deleted", "file_id", fileID)
	return nil
}

// FileEditInfo returns the data the edit dialog is seeded with: the name
// without its extension, plus the description. Visible to the owner and to
// grantees.
func (s *FileService) FileEditInfo(ctx context.Context, callerID string, fileID string) (string, string, error) {
	file, err := s.authorizeRead(ctx, callerID, fileID)
	if err != nil {
		return "", "", err
	}

	base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	return base, file.Description, nil
}

// authorizeRead fetches the file when the caller is the owner or holds any
// grant on it; otherwise it reports not-found.
func (s *FileService) authorizeRead(ctx context.Context, callerID string, fileID string) (*models.File, error) {
	file, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if file.OwnerID == callerID {
		return file, nil
	}

	shared, err := s.repomanager.Shares(s.db).ExistsForUser(ctx, fileID, callerID)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, common.ErrorNotFound
	}
	return file, nil
}
