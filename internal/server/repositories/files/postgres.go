// Package files implements the file metadata repository. The ciphertext
// itself is never stored here, only its CID and the wrapped key.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/server/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, file_name, file_description, file_size, file_mime, content_cid, wrapped_key, uploaded_by_user_id, created_at, updated_at`

func scanFile(row interface{ Scan(dest ...any) error }, f *models.File) error {
	return row.Scan(&f.ID, &f.Name, &f.Description, &f.Size, &f.Mime,
		&f.CID, &f.WrappedKey, &f.OwnerID, &f.CreatedAt, &f.UpdatedAt)
}

// Create inserts a file record and returns it with the generated id and
// timestamps filled in.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) (*models.File, error) {
	query := `
		INSERT INTO files (file_name, file_description, file_size, file_mime, content_cid, wrapped_key, uploaded_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + fileColumns

	result := &models.File{}
	row := r.db.QueryRowContext(ctx, query,
		file.Name, file.Description, file.Size, file.Mime, file.CID, file.WrappedKey, file.OwnerID)
	if err := scanFile(row, result); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorDuplicateName
		}
		return nil, fmt.Errorf("failed to insert file: %w", err)
	}
	return result, nil
}

// GetByID returns the file record or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1`

	result := &models.File{}
	if err := scanFile(r.db.QueryRowContext(ctx, query, id), result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// GetOwned returns the file only when ownerID owns it. A file owned by
// someone else is reported as not found, not as forbidden.
func (r *PostgresRepository) GetOwned(ctx context.Context, id string, ownerID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id=$1 AND uploaded_by_user_id=$2`

	result := &models.File{}
	if err := scanFile(r.db.QueryRowContext(ctx, query, id, ownerID), result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// ListByOwner returns the owner's files, most recently updated first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE uploaded_by_user_id=$1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		var item models.File
		if err := scanFile(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDiscoverable returns other users' files the caller neither holds a
// grant for nor has a pending request on, ordered by file name.
func (r *PostgresRepository) ListDiscoverable(ctx context.Context, userID string) ([]*models.DiscoverableFile, error) {
	query := `
		SELECT f.id, f.file_name, f.file_description, f.file_size, f.file_mime, f.uploaded_by_user_id, f.created_at, f.updated_at, u.name
		FROM files f
		JOIN users u ON u.id = f.uploaded_by_user_id
		WHERE f.uploaded_by_user_id != $1
		  AND f.id NOT IN (SELECT file_id FROM shared_files WHERE shared_with_user_id = $1)
		  AND f.id NOT IN (SELECT requested_file_id FROM share_requests WHERE requested_by_user_id = $1)
		ORDER BY f.file_name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select discoverable files: %w", err)
	}
	defer rows.Close()

	var result []*models.DiscoverableFile
	for rows.Next() {
		var item models.DiscoverableFile
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Size, &item.Mime,
			&item.OwnerID, &item.CreatedAt, &item.UpdatedAt, &item.OwnerName); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// NameExists reports whether ownerID already has another file with the
// exact name. excludeFileID keeps a rename from colliding with itself.
func (r *PostgresRepository) NameExists(ctx context.Context, ownerID string, name string, excludeFileID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM files WHERE uploaded_by_user_id=$1 AND file_name=$2 AND id != $3)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, name, excludeFileID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check file name: %w", err)
	}
	return exists, nil
}

// UpdateMetadata changes the mutable fields (name, description) and bumps
// updated_at. Exactly one row must be affected.
func (r *PostgresRepository) UpdateMetadata(ctx context.Context, id string, name string, description string) error {
	query := `UPDATE files SET file_name=$2, file_description=$3, updated_at=now() WHERE id=$1`

	result, err := r.db.ExecContext(ctx, query, id, name, description)
	if err != nil {
		return fmt.Errorf("failed to update file metadata: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the file row. The caller is responsible for running the
// grant/request cascade in the same transaction first.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
