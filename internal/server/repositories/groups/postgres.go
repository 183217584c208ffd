// Package groups provides the PostgreSQL-backed repository for group
// exhibits.
package groups

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

func (r *PostgresRepository) Create(ctx context.Context, g *models.GroupExhibit) error {
	query := `
		INSERT INTO group_exhibits (id, name)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, g.ID, g.Name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GroupExhibit, error) {
	query := `
		SELECT id, name, created_at FROM group_exhibits
		WHERE id = $1
	`
	g := &models.GroupExhibit{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}
