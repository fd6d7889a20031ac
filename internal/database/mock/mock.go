// Package mock provides an in-memory store implementation for tests.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"faceregistry/internal/database"
)

// Store is an in-memory implementation of database.UserStore and
// database.FaceStore. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*database.User
	faces      map[int64]*database.Face
	nextUserID int64
	nextFaceID int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*database.User),
		faces:      make(map[int64]*database.Face),
		nextUserID: 1,
		nextFaceID: 1,
	}
}

// GetByEmail returns the user with the given email, or nil if absent.
func (s *Store) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// GetByID returns the user with the given id, or nil if absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

// List returns users ordered by id using offset/limit pagination.
func (s *Store) List(ctx context.Context, skip, limit int) ([]database.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]database.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if skip < 0 {
		skip = 0
	}
	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Create inserts a new user, enforcing email uniqueness like the UNIQUE
// constraint does in PostgreSQL.
func (s *Store) Create(ctx context.Context, nu database.NewUser) (*database.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == nu.Email {
			return nil, database.ErrDuplicateEmail
		}
	}

	u := &database.User{
		ID:        s.nextUserID,
		Email:     nu.Email,
		Name:      nu.Name,
		Password:  nu.Password,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.nextUserID++

	copied := *u
	return &copied, nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Save inserts a face row, rejecting unknown owners like the FK does.
func (s *Store) Save(ctx context.Context, face *database.Face) (*database.Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[face.OwnerID]; !ok {
		return nil, database.ErrUserNotFound
	}

	saved := *face
	saved.ID = s.nextFaceID
	saved.CreatedAt = time.Now()
	s.faces[saved.ID] = &saved
	s.nextFaceID++

	copied := saved
	return &copied, nil
}

// ListByOwner returns all faces owned by a user, ordered by id.
func (s *Store) ListByOwner(ctx context.Context, ownerID int64) ([]database.Face, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var faces []database.Face
	for _, f := range s.faces {
		if f.OwnerID == ownerID {
			faces = append(faces, *f)
		}
	}
	sort.Slice(faces, func(i, j int) bool { return faces[i].ID < faces[j].ID })
	return faces, nil
}

// CountByOwner returns the number of faces owned by a user.
func (s *Store) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, f := range s.faces {
		if f.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// FindSimilar does a brute-force cosine scan, nearest first.
func (s *Store) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.FaceMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]database.FaceMatch, 0, len(s.faces))
	for _, f := range s.faces {
		matches = append(matches, database.FaceMatch{
			Face:     *f,
			Distance: database.CosineDistance(embedding, f.Embedding),
		})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })

	if limit >= 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

// Verify interface compliance.
var _ database.UserStore = (*Store)(nil)
var _ database.FaceStore = (*Store)(nil)
