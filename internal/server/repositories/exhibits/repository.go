package exhibits

import (
	"context"

	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, exhibit *models.Exhibit) error
	GetByID(ctx context.Context, id string) (*models.Exhibit, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Exhibit, error)

	// UpdateVersioned writes the new aggregate state on the condition that
	// the stored version still equals expectedVersion; on mismatch it
	// returns common.ErrVersionConflict and writes nothing.
	UpdateVersioned(ctx context.Context, exhibit *models.Exhibit, expectedVersion int64) error

	// ReplaceImages rewrites the ordered gallery rows for an exhibit.
	ReplaceImages(ctx context.Context, exhibitID string, urls []string) error

	Delete(ctx context.Context, id string) error
}
