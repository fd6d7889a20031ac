package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"faceregistry/internal/database"
)

// uniqueViolation is the PostgreSQL error code for a UNIQUE constraint hit.
const uniqueViolation = "23505"

// UserRepository provides PostgreSQL-backed user storage.
type UserRepository struct {
	pool *Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool *Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(scanner interface{ Scan(...any) error }) (*database.User, error) {
	var u database.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by exact email match, nil if absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*database.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password, is_active, created_at
		FROM users
		WHERE email = $1
	`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by primary key, nil if absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*database.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password, is_active, created_at
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

// List returns users ordered by id using offset/limit pagination.
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]database.User, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, password, is_active, created_at
		FROM users
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []database.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Create inserts a new user. The UNIQUE constraint on users.email backs up
// the caller's eager duplicate check, so concurrent signups with the same
// email resolve to ErrDuplicateEmail instead of a second row.
func (r *UserRepository) Create(ctx context.Context, nu database.NewUser) (*database.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password, is_active, created_at
	`, nu.Email, nu.Name, nu.Password)

	u, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, database.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Verify interface compliance.
var _ database.UserStore = (*UserRepository)(nil)
