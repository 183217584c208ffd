// Package invites provides the PostgreSQL-backed repository for group
// invitation state. Rows are never physically deleted; declined invites
// remain as history.
package invites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateIfNoActive relies on the partial unique index over active states, so
// two concurrent invites for the same pair cannot both insert.
func (r *PostgresRepository) CreateIfNoActive(ctx context.Context, inv *models.GroupInvite) error {
	query := `
		INSERT INTO group_invites (id, group_id, user_id, inviter_id, state)
		VALUES ($1, $2, $3, $4, 'PENDING')
		ON CONFLICT (user_id, group_id) WHERE state IN ('PENDING', 'ACCEPTED')
		DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, inv.ID, inv.GroupID, inv.UserID, inv.InviterID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GroupInvite, error) {
	query := `
		SELECT id, group_id, user_id, inviter_id, state, created_at, decided_at
		FROM group_invites
		WHERE id = $1
	`
	inv := &models.GroupInvite{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID, &inv.GroupID, &inv.UserID, &inv.InviterID, &inv.State, &inv.CreatedAt, &inv.DecidedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return inv, nil
}

// Decide performs the PENDING -> terminal transition as a compare-and-set:
// of two concurrent responses exactly one sees RowsAffected == 1.
func (r *PostgresRepository) Decide(ctx context.Context, id string, state string) error {
	query := `
		UPDATE group_invites
		SET state = $2, decided_at = now()
		WHERE id = $1 AND state = 'PENDING'
	`
	res, err := r.db.ExecContext(ctx, query, id, state)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.GroupInviteView, error) {
	query := `
		SELECT i.id, i.group_id, i.user_id, i.inviter_id, i.state,
		       i.created_at, i.decided_at, g.name
		FROM group_invites i
		JOIN group_exhibits g ON g.id = i.group_id
		WHERE i.user_id = $1
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select invites: %w", err)
	}
	defer rows.Close()

	var result []*models.GroupInviteView
	for rows.Next() {
		v := &models.GroupInviteView{}
		if err := rows.Scan(
			&v.ID, &v.GroupID, &v.UserID, &v.InviterID, &v.State,
			&v.CreatedAt, &v.DecidedAt, &v.GroupName,
		); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) HasAccepted(ctx context.Context, userID, groupID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_invites
			WHERE user_id = $1 AND group_id = $2 AND state = 'ACCEPTED'
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, userID, groupID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) ListAcceptedMembers(ctx context.Context, groupID string) ([]string, error) {
	query := `
		SELECT user_id FROM group_invites
		WHERE group_id = $1 AND state = 'ACCEPTED'
		ORDER BY decided_at
	`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to select members: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		result = append(result, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
