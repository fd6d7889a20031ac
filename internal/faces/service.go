// Package faces implements the face registration and matching service.
package faces

import (
	"context"
	"fmt"
	"log"

	"faceregistry/internal/database"
	"faceregistry/internal/embedding"
)

// Extractor derives a face embedding from raw image bytes.
type Extractor interface {
	Extract(ctx context.Context, imageData []byte) (*embedding.Result, error)
}

// Service coordinates user lookups, embedding extraction and face storage.
type Service struct {
	users     database.UserStore
	faces     database.FaceStore
	extractor Extractor
}

// NewService creates a face service.
func NewService(users database.UserStore, faces database.FaceStore, extractor Extractor) *Service {
	return &Service{
		users:     users,
		faces:     faces,
		extractor: extractor,
	}
}

// Register derives an embedding for the uploaded image and persists a face
// row owned by the given user. The owner is resolved before any file
// processing; failures after that never leave a partial row because the
// store inserts transactionally.
func (s *Service) Register(ctx context.Context, userID int64, filename string, data []byte) (*database.Face, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving face owner: %w", err)
	}
	if user == nil {
		return nil, database.ErrUserNotFound
	}

	// Size and name are informational only.
	log.Printf("adding face for user %d (file=%q size=%d)", userID, filename, len(data))

	result, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}

	face := &database.Face{
		OwnerID:   userID,
		Embedding: result.Embedding,
		Model:     result.Model,
		Dim:       result.Dim,
	}

	saved, err := s.faces.Save(ctx, face)
	if err != nil {
		return nil, fmt.Errorf("persisting face: %w", err)
	}
	return saved, nil
}

// ListByOwner returns the faces registered for a user.
func (s *Service) ListByOwner(ctx context.Context, userID int64) ([]database.Face, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving face owner: %w", err)
	}
	if user == nil {
		return nil, database.ErrUserNotFound
	}
	return s.faces.ListByOwner(ctx, userID)
}

// Match embeds a probe image and returns the nearest stored faces by
// cosine distance.
func (s *Service) Match(ctx context.Context, data []byte, limit int) ([]database.FaceMatch, error) {
	if limit <= 0 {
		limit = 10
	}

	result, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return nil, err
	}

	matches, err := s.faces.FindSimilar(ctx, result.Embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("searching similar faces: %w", err)
	}
	return matches, nil
}
