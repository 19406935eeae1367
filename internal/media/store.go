package media

import (
	"context"
	"time"

	"scribe/internal/models"
	"scribe/internal/observability"

	"github.com/google/uuid"
)

// Store uploads and deletes assets on the media host. Implementations do
// not retry.
type Store interface {
	Upload(ctx context.Context, in Upload) (models.Image, error)
	Delete(ctx context.Context, publicID string) error
	DeleteMany(ctx context.Context, publicIDs []string) error
}

// objectKey returns a fresh storage key for an upload of contentType.
func objectKey(contentType string) string {
	return time.Now().UTC().Format("2006/01/") + uuid.New().String() + extensionFor(contentType)
}

// Instrument wraps a store so that every failure is traced, counted and
// returned as a DELEGATE_ERROR.
func Instrument(s Store) Store {
	return &instrumented{next: s}
}

type instrumented struct {
	next Store
}

func (s *instrumented) Upload(ctx context.Context, in Upload) (models.Image, error) {
	ctx, span := observability.StartDelegateSpan(ctx, "media", "upload")
	img, err := s.next.Upload(ctx, in)
	observability.EndSpan(span, err)
	if err != nil {
		observability.RecordDelegateFailure("media", "upload")
		return models.Image{}, models.NewDelegateError("image upload", err)
	}
	return img, nil
}

func (s *instrumented) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	ctx, span := observability.StartDelegateSpan(ctx, "media", "delete")
	err := s.next.Delete(ctx, publicID)
	observability.EndSpan(span, err)
	if err != nil {
		observability.RecordDelegateFailure("media", "delete")
		return models.NewDelegateError("image delete", err)
	}
	return nil
}

func (s *instrumented) DeleteMany(ctx context.Context, publicIDs []string) error {
	ids := make([]string, 0, len(publicIDs))
	for _, id := range publicIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	ctx, span := observability.StartDelegateSpan(ctx, "media", "delete_many")
	err := s.next.DeleteMany(ctx, ids)
	observability.EndSpan(span, err)
	if err != nil {
		observability.RecordDelegateFailure("media", "delete_many")
		return models.NewDelegateError("image delete", err)
	}
	return nil
}
