// Package exhibits provides the PostgreSQL-backed repository for exhibit
// aggregates and their ordered gallery rows.
package exhibits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
)

// PostgresRepository implements exhibit storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Exhibit) error {
	query := `
		INSERT INTO exhibits
			(id, user_id, group_id, title, author_word, introduction, size,
			 production_method, price, for_sale, thumbnail_url, model3d_url, distribute)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.GroupID, e.Title, e.AuthorWord, e.Introduction, e.Size,
		e.ProductionMethod, e.Price, e.ForSale, e.ThumbnailURL, e.Model3DURL, e.Distribute)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Exhibit, error) {
	query := `
		SELECT id, user_id, group_id, title, author_word, introduction, size,
		       production_method, price, for_sale, thumbnail_url, model3d_url,
		       distribute, version, created_at, updated_at
		FROM exhibits
		WHERE id = $1
	`
	e := &models.Exhibit{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.GroupID, &e.Title, &e.AuthorWord, &e.Introduction, &e.Size,
		&e.ProductionMethod, &e.Price, &e.ForSale, &e.ThumbnailURL, &e.Model3DURL,
		&e.Distribute, &e.Version, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	imgQuery := `
		SELECT url FROM exhibit_images
		WHERE exhibit_id = $1
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, imgQuery, id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		e.ImageURLs = append(e.ImageURLs, url)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Exhibit, error) {
	query := `
		SELECT id, user_id, group_id, title, author_word, introduction, size,
		       production_method, price, for_sale, thumbnail_url, model3d_url,
		       distribute, version, created_at, updated_at
		FROM exhibits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select exhibits: %w", err)
	}
	defer rows.Close()

	var result []*models.Exhibit
	byID := map[string]*models.Exhibit{}
	for rows.Next() {
		e := &models.Exhibit{}
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.GroupID, &e.Title, &e.AuthorWord, &e.Introduction, &e.Size,
			&e.ProductionMethod, &e.Price, &e.ForSale, &e.ThumbnailURL, &e.Model3DURL,
			&e.Distribute, &e.Version, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	imgQuery := `
		SELECT i.exhibit_id, i.url
		FROM exhibit_images i
		JOIN exhibits e ON e.id = i.exhibit_id
		WHERE e.user_id = $1
		ORDER BY i.exhibit_id, i.position
	`
	imgRows, err := r.db.QueryContext(ctx, imgQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select exhibit images: %w", err)
	}
	defer imgRows.Close()

	for imgRows.Next() {
		var exhibitID, url string
		if err := imgRows.Scan(&exhibitID, &url); err != nil {
			return nil, err
		}
		if e, ok := byID[exhibitID]; ok {
			e.ImageURLs = append(e.ImageURLs, url)
		}
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateVersioned is the single concurrency-control point for exhibit
// mutation: the write lands only if the stored version is still the one the
// caller loaded.
func (r *PostgresRepository) UpdateVersioned(ctx context.Context, e *models.Exhibit, expectedVersion int64) error {
	query := `
		UPDATE exhibits SET
			title = $3, author_word = $4, introduction = $5, size = $6,
			production_method = $7, price = $8, for_sale = $9,
			thumbnail_url = $10, model3d_url = $11, distribute = $12,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $2
	`
	res, err := r.db.ExecContext(ctx, query,
		e.ID, expectedVersion, e.Title, e.AuthorWord, e.Introduction, e.Size,
		e.ProductionMethod, e.Price, e.ForSale, e.ThumbnailURL, e.Model3DURL, e.Distribute)
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
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) ReplaceImages(ctx context.Context, exhibitID string, urls []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exhibit_images WHERE exhibit_id = $1`, exhibitID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	query := `
		INSERT INTO exhibit_images (exhibit_id, position, url)
		VALUES ($1, $2, $3)
	`
	for i, url := range urls {
		if _, err := r.db.ExecContext(ctx, query, exhibitID, i, url); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exhibits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
