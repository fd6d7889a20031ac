package database

import "context"

// UserStore provides CRUD access to the users table.
type UserStore interface {
	// GetByEmail returns the user with the given email, or nil if absent.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID returns the user with the given id, or nil if absent.
	GetByID(ctx context.Context, id int64) (*User, error)
	// List returns users ordered by id using offset/limit pagination.
	List(ctx context.Context, skip, limit int) ([]User, error)
	// Create inserts a new user. Returns ErrDuplicateEmail if the email
	// is already registered.
	Create(ctx context.Context, u NewUser) (*User, error)
	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// FaceStore provides access to the faces table.
type FaceStore interface {
	// Save inserts a face row transactionally and returns it with its
	// assigned id. Returns ErrUserNotFound if the owner does not exist.
	Save(ctx context.Context, face *Face) (*Face, error)
	// ListByOwner returns all faces owned by a user, ordered by id.
	ListByOwner(ctx context.Context, ownerID int64) ([]Face, error)
	// CountByOwner returns the number of faces owned by a user.
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	// FindSimilar returns up to limit faces closest to the probe embedding
	// by cosine distance, nearest first.
	FindSimilar(ctx context.Context, embedding []float32, limit int) ([]FaceMatch, error)
}
