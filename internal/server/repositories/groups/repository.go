package groups

import (
	"context"

	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, group *models.GroupExhibit) error
	GetByID(ctx context.Context, id string) (*models.GroupExhibit, error)
}
