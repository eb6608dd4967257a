package directory

import (
	"context"

	"filevault/internal/server/models"
)

type Repository interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	MemberIDs(ctx context.Context, departmentID string) ([]string, error)
	ListDepartments(ctx context.Context) ([]*models.Department, error)
	ListUsersExcept(ctx context.Context, userID string) ([]*models.User, error)
}
