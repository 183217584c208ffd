// Package services contains the server-side business logic. This file
// implements UploadService, the orchestrator that turns a batch of image
// files into ordered object-store URLs with all-or-nothing semantics.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nick102030/Jolvre-BE/internal/common"
	"github.com/nick102030/Jolvre-BE/internal/logging"
	"github.com/nick102030/Jolvre-BE/internal/server/storage"
)

// FileUpload is one file received from a client: raw bytes plus the declared
// content type and original filename.
type FileUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Only JPEG and PNG images are publishable.
var acceptedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// UploadService uploads image batches to the object store. Uploads within a
// batch run concurrently up to parallelism, but the returned URL slice always
// matches the input order: every result is written to its fixed slot.
type UploadService struct {
	store       storage.ObjectStore
	logger      logging.Logger
	parallelism int
}

func NewUploadService(store storage.ObjectStore, logger logging.Logger, parallelism int) *UploadService {
	if parallelism < 1 {
		parallelism = 1
	}
	return &UploadService{
		store:       store,
		logger:      logger.With("module", "uploads"),
		parallelism: parallelism,
	}
}

// newStorageKey produces a unique object key, partitioned by date.
func newStorageKey(filename string) string {
	d := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("exhibits/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// validateBatch rejects the whole batch before any network call if a single
// file carries a missing or unsupported declared content type.
func (s *UploadService) validateBatch(files []FileUpload) error {
	for _, f := range files {
		if f.ContentType == "" {
			return fmt.Errorf("%w: missing content type for %q", common.ErrorValidation, f.Filename)
		}
		if _, ok := acceptedContentTypes[f.ContentType]; !ok {
			return fmt.Errorf("%w: unsupported content type %q for %q", common.ErrorValidation, f.ContentType, f.Filename)
		}
	}
	return nil
}

// UploadBatch validates and uploads files, returning their URLs in input
// order. If any upload fails (or the batch is aborted mid-flight), every
// object already stored for this batch is deleted best-effort and the
// original error is returned: callers never observe a partial batch.
func (s *UploadService) UploadBatch(ctx context.Context, files []FileUpload) ([]string, error) {
	if err := s.validateBatch(files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	urls := make([]string, len(files))
	keys := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for i, f := range files {
		g.Go(func() error {
			key := newStorageKey(f.Filename)
			url, err := s.store.Put(gctx, key, f.Data, f.ContentType)
			if err != nil {
				return fmt.Errorf("%w: %q: %v", common.ErrorUpload, f.Filename, err)
			}
			// each goroutine owns exactly one slot
			keys[i] = key
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.compensate(ctx, keys)
		return nil, err
	}

	return urls, nil
}

// UploadOne is the single-file convenience path with the same validation and
// failure semantics as UploadBatch.
func (s *UploadService) UploadOne(ctx context.Context, file FileUpload) (string, error) {
	urls, err := s.UploadBatch(ctx, []FileUpload{file})
	if err != nil {
		return "", err
	}
	return urls[0], nil
}

// compensate deletes whatever the failed batch managed to store. Failures
// here are logged, never escalated: the caller still gets the upload error.
func (s *UploadService) compensate(ctx context.Context, keys []string) {
	// cleanup must run even when the request context was cancelled
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Error(ctx, "compensating delete failed", "key", key, "error", err.Error())
		}
	}
}
