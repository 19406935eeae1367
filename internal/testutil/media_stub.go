package testutil

import (
	"context"
	"fmt"
	"sync"

	"scribe/internal/media"
	"scribe/internal/models"
)

// MediaStoreStub is an in-memory media.Store that records every call.
type MediaStoreStub struct {
	mu       sync.Mutex
	next     int
	Objects  map[string][]byte
	Deleted  []string
	FailWith error
}

// NewMediaStoreStub creates an empty media store stub.
func NewMediaStoreStub() *MediaStoreStub {
	return &MediaStoreStub{Objects: make(map[string][]byte)}
}

// Upload stores the content under a sequential id.
func (s *MediaStoreStub) Upload(_ context.Context, in media.Upload) (models.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return models.Image{}, s.FailWith
	}
	s.next++
	id := fmt.Sprintf("stub/%d", s.next)
	s.Objects[id] = in.Content
	return models.Image{URL: "https://media.test/" + id, PublicID: id}, nil
}

// Delete removes one object.
func (s *MediaStoreStub) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	delete(s.Objects, publicID)
	s.Deleted = append(s.Deleted, publicID)
	return nil
}

// DeleteMany removes every listed object.
func (s *MediaStoreStub) DeleteMany(ctx context.Context, publicIDs []string) error {
	for _, id := range publicIDs {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeletedIDs returns a copy of the deleted ids in call order.
func (s *MediaStoreStub) DeletedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Deleted...)
}

// Has reports whether publicID is currently stored.
func (s *MediaStoreStub) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[publicID]
	return ok
}
