// Package sharerequests implements the pending share request repository.
// Rows exist only while a request is pending; approval and stale-request
// cleanup both end in a delete.
package sharerequests

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

// PostgresRepository implements request storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a pending request. A duplicate (file, user) pair loses on
// the unique index and is reported as common.ErrorRequestExists.
func (r *PostgresRepository) Create(ctx context.Context, req *models.ShareRequest) (*models.ShareRequest, error) {
	query := `
		INSERT INTO share_requests (requested_file_id, requested_by_user_id, requested_permission_id)
		VALUES ($1, $2, $3)
		RETURNING id, requested_file_id, requested_by_user_id, requested_permission_id, created_at`

	result := &models.ShareRequest{}
	row := r.db.QueryRowContext(ctx, query, req.FileID, req.UserID, req.Permission)
	if err := row.Scan(&result.ID, &result.FileID, &result.UserID, &result.Permission, &result.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorRequestExists
		}
		return nil, fmt.Errorf("failed to insert share request: %w", err)
	}
	return result, nil
}

// GetByID returns the pending request or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ShareRequest, error) {
	query := `
		SELECT id, requested_file_id, requested_by_user_id, requested_permission_id, created_at
		FROM share_requests WHERE id=$1`

	result := &models.ShareRequest{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&result.ID, &result.FileID, &result.UserID, &result.Permission, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select share request: %w", err)
	}
	return result, nil
}

// Exists reports whether the user already has a pending request on the file.
func (r *PostgresRepository) Exists(ctx context.Context, fileID string, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM share_requests WHERE requested_file_id=$1 AND requested_by_user_id=$2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fileID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check share request: %w", err)
	}
	return exists, nil
}

// ListForOwner returns pending requests on files owned by ownerID, joined
// with file and requester display data, newest first.
func (r *PostgresRepository) ListForOwner(ctx context.Context, ownerID string) ([]*models.ShareRequestView, error) {
	query := `
		SELECT sr.id, sr.requested_file_id, sr.requested_by_user_id, sr.requested_permission_id, sr.created_at,
		       f.file_name, f.file_description, u.name, p.permission_name
		FROM share_requests sr
		JOIN permissions p ON p.id = sr.requested_permission_id
		JOIN files f ON f.id = sr.requested_file_id
		JOIN users u ON u.id = sr.requested_by_user_id
		WHERE f.uploaded_by_user_id = $1
		ORDER BY sr.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select share requests: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareRequestView
	for rows.Next() {
		var item models.ShareRequestView
		if err := rows.Scan(&item.ID, &item.FileID, &item.UserID, &item.Permission, &item.CreatedAt,
			&item.FileName, &item.FileDescription, &item.RequesterName, &item.PermissionName); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a single request (approval or stale-request cleanup).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM share_requests WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete share request: %w", err)
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

// DeleteByFile removes every pending request for the file.
func (r *PostgresRepository) DeleteByFile(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM share_requests WHERE requested_file_id=$1`, fileID); err != nil {
		return fmt.Errorf("failed to delete share requests for file: %w", err)
	}
	return nil
}
