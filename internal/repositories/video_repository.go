package repositories

import (
	"context"

	"github.com/clipvault/backend/internal/models"
)

// VideoRepository defines data access for published video records.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	List(ctx context.Context, ownerEmail string) ([]models.Video, error)
	Find(ctx context.Context, id string) (models.Video, error)
	Delete(ctx context.Context, id string) error
}
