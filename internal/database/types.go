package database

import (
	"time"
)

// User represents a registered account.
type User struct {
	ID        int64
	Email     string
	Name      string
	Password  string // bcrypt hash, never exposed over the API
	IsActive  bool
	CreatedAt time.Time
}

// NewUser carries the fields needed to insert a user row.
// Password must already be hashed by the caller.
type NewUser struct {
	Email    string
	Name     string
	Password string
}

// Face represents a face embedding owned by a user.
type Face struct {
	ID        int64
	OwnerID   int64
	Embedding []float32
	Model     string
	Dim       int
	CreatedAt time.Time
}

// FaceMatch pairs a stored face with its cosine distance to a probe embedding.
type FaceMatch struct {
	Face     Face
	Distance float64
}
