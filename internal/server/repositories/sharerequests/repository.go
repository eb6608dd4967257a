package sharerequests

import (
	"context"

	"filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, req *models.ShareRequest) (*models.ShareRequest, error)
	GetByID(ctx context.Context, id string) (*models.ShareRequest, error)
	Exists(ctx context.Context, fileID string, userID string) (bool, error)
	ListForOwner(ctx context.Context, ownerID string) ([]*models.ShareRequestView, error)
	Delete(ctx context.Context, id string) error
	DeleteByFile(ctx context.Context, fileID string) error
}
