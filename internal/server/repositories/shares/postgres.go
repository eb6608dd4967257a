// Package shares implements the grant (shared_files) repository. A grant
// row is the unit of the ACL: it says one user holds one permission on one
// file, with the grantee's department snapshotted at grant time.
package shares

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

// PostgresRepository implements grant storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a grant. A concurrent insert for the same (file, user)
// pair loses the race on the unique index and is reported as
// common.ErrorAlreadyShared.
func (r *PostgresRepository) Create(ctx context.Context, share *models.SharedFile) (*models.SharedFile, error) {
	query := `
		INSERT INTO shared_files (file_id, shared_with_user_id, shared_with_department_id, shared_permission_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, file_id, shared_with_user_id, shared_with_department_id, shared_permission_id, created_at`

	result := &models.SharedFile{}
	row := r.db.QueryRowContext(ctx, query, share.FileID, share.UserID, share.DepartmentID, share.Permission)
	if err := row.Scan(&result.ID, &result.FileID, &result.UserID, &result.DepartmentID, &result.Permission, &result.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyShared
		}
		return nil, fmt.Errorf("failed to insert grant: %w", err)
	}
	return result, nil
}

// GetByID returns the grant or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.SharedFile, error) {
	query := `
		SELECT id, file_id, shared_with_user_id, shared_with_department_id, shared_permission_id, created_at
		FROM shared_files WHERE id=$1`

	result := &models.SharedFile{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&result.ID, &result.FileID, &result.UserID, &result.DepartmentID, &result.Permission, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select grant: %w", err)
	}
	return result, nil
}

// GetForUser returns the grant for (file, user) or common.ErrorNotFound.
func (r *PostgresRepository) GetForUser(ctx context.Context, fileID string, userID string) (*models.SharedFile, error) {
	query := `
		SELECT id, file_id, shared_with_user_id, shared_with_department_id, shared_permission_id, created_at
		FROM shared_files WHERE file_id=$1 AND shared_with_user_id=$2`

	result := &models.SharedFile{}
	row := r.db.QueryRowContext(ctx, query, fileID, userID)
	if err := row.Scan(&result.ID, &result.FileID, &result.UserID, &result.DepartmentID, &result.Permission, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select grant: %w", err)
	}
	return result, nil
}

// ExistsForUser reports whether a grant exists for (file, user).
func (r *PostgresRepository) ExistsForUser(ctx context.Context, fileID string, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shared_files WHERE file_id=$1 AND shared_with_user_id=$2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fileID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return exists, nil
}

// ExistsForDepartment reports whether any grant for the file carries the
// department id. Any such row is the department-share marker: a bulk-share
// is a point-in-time snapshot, so one surviving row means "already shared".
func (r *PostgresRepository) ExistsForDepartment(ctx context.Context, fileID string, departmentID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM shared_files WHERE file_id=$1 AND shared_with_department_id=$2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fileID, departmentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check department grant: %w", err)
	}
	return exists, nil
}

// ListForUser returns the caller's grants joined with file, owner and
// permission display data, newest grant first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*models.SharedFileView, error) {
	query := `
		SELECT sf.id, sf.file_id, sf.shared_with_user_id, sf.shared_with_department_id, sf.shared_permission_id, sf.created_at,
		       f.file_name, f.file_description, u.name, p.permission_name
		FROM shared_files sf
		JOIN permissions p ON p.id = sf.shared_permission_id
		JOIN files f ON f.id = sf.file_id
		JOIN users u ON u.id = f.uploaded_by_user_id
		WHERE sf.shared_with_user_id = $1
		ORDER BY sf.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select shared files: %w", err)
	}
	defer rows.Close()

	var result []*models.SharedFileView
	for rows.Next() {
		var item models.SharedFileView
		if err := rows.Scan(&item.ID, &item.FileID, &item.UserID, &item.DepartmentID, &item.Permission, &item.CreatedAt,
			&item.FileName, &item.FileDescription, &item.OwnerName, &item.PermissionName); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AccessList returns the file's grants at the given permission level joined
// with grantee and department display data, ordered by grantee name.
func (r *PostgresRepository) AccessList(ctx context.Context, fileID string, permission models.Permission) ([]*models.AccessListEntry, error) {
	query := `
		SELECT sf.id, sf.file_id, sf.shared_with_user_id, sf.shared_with_department_id, sf.shared_permission_id, sf.created_at,
		       u.name, u.email, p.permission_name, d.dep_name
		FROM shared_files sf
		JOIN permissions p ON p.id = sf.shared_permission_id
		JOIN users u ON u.id = sf.shared_with_user_id
		JOIN departments d ON d.id = u.department_id
		WHERE sf.file_id = $1 AND sf.shared_permission_id = $2
		ORDER BY u.name`

	rows, err := r.db.QueryContext(ctx, query, fileID, permission)
	if err != nil {
		return nil, fmt.Errorf("failed to select access list: %w", err)
	}
	defer rows.Close()

	var result []*models.AccessListEntry
	for rows.Next() {
		var item models.AccessListEntry
		if err := rows.Scan(&item.ID, &item.FileID, &item.UserID, &item.DepartmentID, &item.Permission, &item.CreatedAt,
			&item.UserName, &item.UserEmail, &item.PermissionName, &item.DepartmentName); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdatePermission changes the grant's permission. Exactly one row must be
// affected.
func (r *PostgresRepository) UpdatePermission(ctx context.Context, id string, permission models.Permission) error {
	result, err := r.db.ExecContext(ctx, `UPDATE shared_files SET shared_permission_id=$2 WHERE id=$1`, id, permission)
	if err != nil {
		return fmt.Errorf("failed to update grant: %w", err)
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

// Delete removes a single grant (revoke).
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shared_files WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
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

// DeleteByFile removes every grant for the file. Zero rows is fine: a file
// may never have been shared.
func (r *PostgresRepository) DeleteByFile(ctx context.Context, fileID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shared_files WHERE file_id=$1`, fileID); err != nil {
		return fmt.Errorf("failed to delete grants for file: %w", err)
	}
	return nil
}
