package files

import (
	"context"

	"filevault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetOwned(ctx context.Context, id string, ownerID string) (*models.File, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error)
	ListDiscoverable(ctx context.Context, userID string) ([]*models.DiscoverableFile, error)
	NameExists(ctx context.Context, ownerID string, name string, excludeFileID string) (bool, error)
	UpdateMetadata(ctx context.Context, id string, name string, description string) error
	Delete(ctx context.Context, id string) error
}
