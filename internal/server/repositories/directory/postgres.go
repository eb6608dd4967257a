// Package directory reads the user/department directory. The directory is
// owned by an external system; the core only resolves bulk-share targets,
// snapshots a grantee's department, and feeds the share-target pickers.
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filevault/internal/common"
	"filevault/internal/dbx"
	"filevault/internal/server/models"
)

// PostgresRepository implements directory reads over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetUser returns a directory user (including the owning department) or
// common.ErrorNotFound.
func (r *PostgresRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, name, email, department_id FROM users WHERE id=$1`

	result := &models.User{}
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&result.ID, &result.Name, &result.Email, &result.DepartmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return result, nil
}

// MemberIDs returns the current member ids of the department in a stable
// order. An unknown department yields common.ErrorNotFound.
func (r *PostgresRepository) MemberIDs(ctx context.Context, departmentID string) ([]string, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE id=$1)`, departmentID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check department: %w", err)
	}
	if !exists {
		return nil, common.ErrorNotFound
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users WHERE department_id=$1 ORDER BY id`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to select department members: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDepartments returns all departments ordered by name.
func (r *PostgresRepository) ListDepartments(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, dep_name FROM departments ORDER BY dep_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select departments: %w", err)
	}
	defer rows.Close()

	var result []*models.Department
	for rows.Next() {
		var item models.Department
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListUsersExcept returns every user but the caller, ordered by email, for
// the share-target picker.
func (r *PostgresRepository) ListUsersExcept(ctx context.Context, userID string) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, department_id FROM users WHERE id != $1 ORDER BY email`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		var item models.User
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.DepartmentID); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
