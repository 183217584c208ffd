package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/logging"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/repomanager"
)

// InviteService runs the invitation lifecycle for group exhibits: issue,
// accept, decline. Membership is never stored on the group; it is derived
// from ACCEPTED invite rows.
type InviteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewInviteService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *InviteService {
	return &InviteService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "invites"),
	}
}

// CreateGroup creates a group exhibit and seeds the creator's membership:
// the creator gets an invite row driven straight to ACCEPTED, so the usual
// derived-membership rule covers creators too.
func (s *InviteService) CreateGroup(ctx context.Context, creatorID, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: group name is required", common.ErrorValidation)
	}

	groupID := uuid.New().String()
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Groups(tx).Create(ctx, &models.GroupExhibit{ID: groupID, Name: name}); err != nil {
			return err
		}
		inviteRepo := s.repomanager.Invites(tx)
		inviteID := uuid.New().String()
		seed := &models.GroupInvite{ID: inviteID, GroupID: groupID, UserID: creatorID, InviterID: creatorID}
		if err := inviteRepo.CreateIfNoActive(ctx, seed); err != nil {
			return err
		}
		return inviteRepo.Decide(ctx, inviteID, models.InviteStateAccepted)
	})
	if err != nil {
		return "", fmt.Errorf("error creating group: %w", err)
	}

	s.logger.Info(ctx, "group created", "group_id", groupID)
	return groupID, nil
}

// Invite issues a PENDING invite from an accepted member to inviteeID.
// Issuance never silently duplicates: an existing PENDING or ACCEPTED row
// for the pair yields ErrorConflict.
func (s *InviteService) Invite(ctx context.Context, inviterID, inviteeID, groupID string) (string, error) {
	if inviteeID == "" {
		return "", fmt.Errorf("%w: invitee is required", common.ErrorValidation)
	}

	if _, err := s.repomanager.Groups(s.db).GetByID(ctx, groupID); err != nil {
		return "", err
	}

	inviteRepo := s.repomanager.Invites(s.db)

	ok, err := inviteRepo.HasAccepted(ctx, inviterID, groupID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: user %s is not a member of group %s", common.ErrorForbidden, inviterID, groupID)
	}

	inv := &models.GroupInvite{
		ID:        uuid.New().String(),
		GroupID:   groupID,
		UserID:    inviteeID,
		InviterID: inviterID,
	}
	if err := inviteRepo.CreateIfNoActive(ctx, inv); err != nil {
		return "", err
	}

	s.logger.Info(ctx, "invite issued", "invite_id", inv.ID, "group_id", groupID, "invitee", inviteeID)
	return inv.ID, nil
}

// Respond transitions a PENDING invite to ACCEPTED or DECLINED. Only the
// invitee may respond, and the transition happens at most once: concurrent
// responses race on a conditional update, so exactly one wins.
func (s *InviteService) Respond(ctx context.Context, actorID, inviteID, decision string) error {
	if decision != models.InviteStateAccepted && decision != models.InviteStateDeclined {
		return fmt.Errorf("%w: invalid decision %q", common.ErrorValidation, decision)
	}

	inviteRepo := s.repomanager.Invites(s.db)

	inv, err := inviteRepo.GetByID(ctx, inviteID)
	if err != nil {
		return err
	}
	if inv.UserID != actorID {
		return fmt.Errorf("%w: user %s is not the invitee of %s", common.ErrorForbidden, actorID, inviteID)
	}

	if err := inviteRepo.Decide(ctx, inviteID, decision); err != nil {
		return err
	}

	s.logger.Info(ctx, "invite decided", "invite_id", inviteID, "state", decision)
	return nil
}

// ListInvites returns all invite rows (any state) for the user, most recent
// first.
func (s *InviteService) ListInvites(ctx context.Context, userID string) ([]*models.GroupInviteView, error) {
	return s.repomanager.Invites(s.db).ListByUser(ctx, userID)
}

// Members returns the derived roster of a group exhibit.
func (s *InviteService) Members(ctx context.Context, groupID string) ([]string, error) {
	if _, err := s.repomanager.Groups(s.db).GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return s.repomanager.Invites(s.db).ListAcceptedMembers(ctx, groupID)
}
