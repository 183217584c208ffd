package invites

import (
	"context"

	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

type Repository interface {
	// CreateIfNoActive inserts a PENDING invite unless an active (PENDING or
	// ACCEPTED) row already exists for the same (user, group) pair, in which
	// case it returns common.ErrorConflict.
	CreateIfNoActive(ctx context.Context, invite *models.GroupInvite) error

	GetByID(ctx context.Context, id string) (*models.GroupInvite, error)

	// Decide transitions a PENDING invite to the given terminal state. The
	// check-and-transition is a single conditional update; if the row is no
	// longer PENDING, common.ErrorConflict is returned.
	Decide(ctx context.Context, id string, state string) error

	ListByUser(ctx context.Context, userID string) ([]*models.GroupInviteView, error)
	HasAccepted(ctx context.Context, userID, groupID string) (bool, error)
	ListAcceptedMembers(ctx context.Context, groupID string) ([]string, error)
}
