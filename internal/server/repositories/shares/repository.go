package shares

import (
	"context"

	"filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, share *models.SharedFile) (*models.SharedFile, error)
	GetByID(ctx context.Context, id string) (*models.SharedFile, error)
	GetForUser(ctx context.Context, fileID string, userID string) (*models.SharedFile, error)
	ExistsForUser(ctx context.Context, fileID string, userID string) (bool, error)
	ExistsForDepartment(ctx context.Context, fileID string, departmentID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]*models.SharedFileView, error)
	AccessList(ctx context.Context, fileID string, permission models.Permission) ([]*models.AccessListEntry, error)
	UpdatePermission(ctx context.Context, id string, permission models.Permission) error
	Delete(ctx context.Context, id string) error
	DeleteByFile(ctx context.Context, fileID string) error
}
