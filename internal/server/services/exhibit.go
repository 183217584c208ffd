package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/dbx"
	"github.com/nick102030/Jolvre-BE/internal/logging"
	"github.com/nick102030/Jolvre-BE/internal/server/models"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/repomanager"
	"github.com/nick102030/Jolvre-BE/internal/server/storage"
)

// ExhibitFields are the caller-editable attributes of an exhibit. Price and
// ForSale pass through untouched.
type ExhibitFields struct {
	Title            string
	AuthorWord       string
	Introduction     string
	Size             string
	ProductionMethod string
	Price            int64
	ForSale          bool
	Distribute       bool
}

// CreateExhibitRequest carries everything needed to publish a new exhibit.
type CreateExhibitRequest struct {
	Fields    ExhibitFields
	Thumbnail FileUpload
	Gallery   []FileUpload
	// GroupID marks the exhibit as group-owned.
	GroupID *string
}

// UpdateExhibitRequest mutates an existing exhibit. A nil Thumbnail keeps the
// current one; a nil Gallery keeps the current gallery, a non-nil Gallery
// replaces it wholesale.
type UpdateExhibitRequest struct {
	Fields    ExhibitFields
	Thumbnail *FileUpload
	Gallery   []FileUpload
	// ReplaceGallery distinguishes "replace with empty gallery" from "keep".
	ReplaceGallery bool
}

// ExhibitView is the denormalized read model for a single exhibit.
type ExhibitView struct {
	models.Exhibit
	// GroupName and Members are populated for group-owned exhibits.
	GroupName string   `json:"group_name,omitempty"`
	Members   []string `json:"members,omitempty"`
}

// ExhibitService owns the exhibit aggregate. Writes follow a fixed sequence:
// stage object-store uploads first, commit the relational aggregate under an
// optimistic version check, and only after the commit is durable reconcile
// the object store by deleting whatever the commit unreferenced. The
// relational row is the single source of truth for what is referenced.
type ExhibitService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploads     *UploadService
	store       storage.ObjectStore
	logger      logging.Logger
}

func NewExhibitService(db *sql.DB, m repomanager.RepositoryManager, uploads *UploadService, store storage.ObjectStore, logger logging.Logger) *ExhibitService {
	return &ExhibitService{
		db:          db,
		repomanager: m,
		uploads:     uploads,
		store:       store,
		logger:      logger.With("module", "exhibits"),
	}
}

// Create uploads the thumbnail and gallery as one batch, then persists the
// aggregate. Either the full aggregate (including final asset URLs) commits,
// or nothing does.
func (s *ExhibitService) Create(ctx context.Context, ownerID string, req CreateExhibitRequest) (string, error) {
	if req.Fields.Title == "" {
		return "", fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if req.Thumbnail.ContentType == "" && len(req.Thumbnail.Data) == 0 {
		return "", fmt.Errorf("%w: thumbnail is required", common.ErrorValidation)
	}

	// one batch: a failure anywhere compensates everything
	batch := make([]FileUpload, 0, len(req.Gallery)+1)
	batch = append(batch, req.Thumbnail)
	batch = append(batch, req.Gallery...)

	urls, err := s.uploads.UploadBatch(ctx, batch)
	if err != nil {
		return "", err
	}

	e := &models.Exhibit{
		ID:               uuid.New().String(),
		UserID:           ownerID,
		GroupID:          req.GroupID,
		Title:            req.Fields.Title,
		AuthorWord:       req.Fields.AuthorWord,
		Introduction:     req.Fields.Introduction,
		Size:             req.Fields.Size,
		ProductionMethod: req.Fields.ProductionMethod,
		Price:            req.Fields.Price,
		ForSale:          req.Fields.ForSale,
		Distribute:       req.Fields.Distribute,
		ThumbnailURL:     urls[0],
		ImageURLs:        urls[1:],
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Exhibits(tx)
		if err := repo.Create(ctx, e); err != nil {
			return err
		}
		return repo.ReplaceImages(ctx, e.ID, e.ImageURLs)
	})
	if err != nil {
		// nothing committed; the staged uploads are unreferenced
		s.deleteAssets(ctx, urls)
		return "", fmt.Errorf("error creating exhibit: %w", err)
	}

	return e.ID, nil
}

// Update stages new uploads (if any), verifies the actor may modify the
// exhibit, and commits the new state conditioned on the version the actor
// read. The orphan candidate set (replaced thumbnail, removed gallery
// entries) is deleted only after the commit succeeds.
func (s *ExhibitService) Update(ctx context.Context, exhibitID, actorID string, req UpdateExhibitRequest) error {
	if req.Fields.Title == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	// stage: upload replacement assets before touching persisted state
	staged := make([]FileUpload, 0, len(req.Gallery)+1)
	if req.Thumbnail != nil {
		staged = append(staged, *req.Thumbnail)
	}
	if req.ReplaceGallery {
		staged = append(staged, req.Gallery...)
	}

	stagedURLs, err := s.uploads.UploadBatch(ctx, staged)
	if err != nil {
		return err
	}

	var newThumbnail string
	newGallery := stagedURLs
	if req.Thumbnail != nil {
		newThumbnail = stagedURLs[0]
		newGallery = stagedURLs[1:]
	}

	current, err := s.repomanager.Exhibits(s.db).GetByID(ctx, exhibitID)
	if err != nil {
		s.deleteAssets(ctx, stagedURLs)
		return err
	}

	if err := s.authorize(ctx, actorID, current); err != nil {
		s.deleteAssets(ctx, stagedURLs)
		return err
	}

	next := *current
	next.Title = req.Fields.Title
	next.AuthorWord = req.Fields.AuthorWord
	next.Introduction = req.Fields.Introduction
	next.Size = req.Fields.Size
	next.ProductionMethod = req.Fields.ProductionMethod
	next.Price = req.Fields.Price
	next.ForSale = req.Fields.ForSale
	next.Distribute = req.Fields.Distribute

	// orphan candidate set: everything the commit will unreference
	var orphans []string
	if req.Thumbnail != nil {
		next.ThumbnailURL = newThumbnail
		orphans = append(orphans, current.ThumbnailURL)
	}
	if req.ReplaceGallery {
		next.ImageURLs = newGallery
		orphans = append(orphans, current.ImageURLs...)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Exhibits(tx)
		if err := repo.UpdateVersioned(ctx, &next, current.Version); err != nil {
			return err
		}
		if req.ReplaceGallery {
			return repo.ReplaceImages(ctx, next.ID, next.ImageURLs)
		}
		return nil
	})
	if err != nil {
		// the commit never happened: our staged assets are the only
		// unreferenced objects, the current aggregate's assets stay
		s.deleteAssets(ctx, stagedURLs)
		if errors.Is(err, common.ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("error updating exhibit: %w", err)
	}

	// strictly after commit: reconcile storage with the relational truth
	s.deleteAssets(ctx, orphans)

	return nil
}

// Get returns the denormalized aggregate view.
func (s *ExhibitService) Get(ctx context.Context, exhibitID string) (*ExhibitView, error) {
	e, err := s.repomanager.Exhibits(s.db).GetByID(ctx, exhibitID)
	if err != nil {
		return nil, err
	}

	view := &ExhibitView{Exhibit: *e}
	if e.GroupID != nil {
		group, err := s.repomanager.Groups(s.db).GetByID(ctx, *e.GroupID)
		if err != nil {
			return nil, err
		}
		members, err := s.repomanager.Invites(s.db).ListAcceptedMembers(ctx, *e.GroupID)
		if err != nil {
			return nil, err
		}
		view.GroupName = group.Name
		view.Members = members
	}

	return view, nil
}

// ListByUser returns the user's exhibits, most recent first.
func (s *ExhibitService) ListByUser(ctx context.Context, userID string) ([]*models.Exhibit, error) {
	return s.repomanager.Exhibits(s.db).ListByUser(ctx, userID)
}

// Delete removes the relational row first and only then deletes the assets:
// no object is ever deleted while a committed row still references it.
func (s *ExhibitService) Delete(ctx context.Context, exhibitID, actorID string) error {
	current, err := s.repomanager.Exhibits(s.db).GetByID(ctx, exhibitID)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, actorID, current); err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Exhibits(tx).Delete(ctx, exhibitID)
	})
	if err != nil {
		return fmt.Errorf("error deleting exhibit: %w", err)
	}

	assets := append([]string{current.ThumbnailURL}, current.ImageURLs...)
	if current.Model3DURL != nil {
		assets = append(assets, *current.Model3DURL)
	}
	s.deleteAssets(ctx, assets)

	return nil
}

// authorize allows the owning user and, for group-owned exhibits, any
// accepted member of the owning group.
func (s *ExhibitService) authorize(ctx context.Context, actorID string, e *models.Exhibit) error {
	if actorID == e.UserID {
		return nil
	}
	if e.GroupID != nil {
		ok, err := s.repomanager.Invites(s.db).HasAccepted(ctx, actorID, *e.GroupID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return fmt.Errorf("%w: user %s may not modify exhibit %s", common.ErrorForbidden, actorID, e.ID)
}

// deleteAssets is the best-effort cleanup path. Failures are logged and the
// orphaned object is left for a future cleanup pass; they never affect the
// outcome of the operation that queued them.
func (s *ExhibitService) deleteAssets(ctx context.Context, urls []string) {
	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if u == "" {
			continue
		}
		key, err := s.store.KeyFromURL(u)
		if err != nil {
			s.logger.Warn(ctx, "skipping cleanup of foreign url", "url", u, "error", err.Error())
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "orphan delete failed", "key", key, "error", err.Error())
		}
	}
}
