package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"faceregistry/internal/database"
)

// foreignKeyViolation is the PostgreSQL error code for a FK constraint hit.
const foreignKeyViolation = "23503"

// FaceRepository provides PostgreSQL-backed face storage with an optional
// in-memory HNSW index for similarity search.
type FaceRepository struct {
	pool  *Pool
	index *database.FaceIndex // nil when disabled
}

// NewFaceRepository creates a new PostgreSQL face repository.
func NewFaceRepository(pool *Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// Save inserts a face row inside a transaction. The owner is re-checked
// within the same transaction so a concurrent user deletion cannot leave
// an orphaned row; any failure rolls the insert back.
func (r *FaceRepository) Save(ctx context.Context, face *database.Face) (*database.Face, error) {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ownerExists bool
	err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", face.OwnerID).Scan(&ownerExists)
	if err != nil {
		return nil, fmt.Errorf("check owner exists: %w", err)
	}
	if !ownerExists {
		return nil, database.ErrUserNotFound
	}

	saved := *face
	err = tx.QueryRowContext(ctx, `
		INSERT INTO faces (owner_id, embedding, model, dim)
		VALUES ($1, $2::vector, $3, $4)
		RETURNING id, created_at
	`,
		face.OwnerID,
		pgvector.NewVector(face.Embedding),
		face.Model,
		face.Dim,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert face: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if r.index != nil {
		r.index.Add(&saved)
	}
	return &saved, nil
}

func scanFaces(rows *sql.Rows) ([]database.Face, error) {
	var faces []database.Face
	for rows.Next() {
		var f database.Face
		var vec pgvector.Vector
		if err := rows.Scan(&f.ID, &f.OwnerID, &vec, &f.Model, &f.Dim, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan face: %w", err)
		}
		f.Embedding = vec.Slice()
		faces = append(faces, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faces: %w", err)
	}
	return faces, nil
}

// ListByOwner returns all faces owned by a user, ordered by id.
func (r *FaceRepository) ListByOwner(ctx context.Context, ownerID int64) ([]database.Face, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, embedding, model, dim, created_at
		FROM faces
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query faces by owner: %w", err)
	}
	defer rows.Close()

	return scanFaces(rows)
}

// CountByOwner returns the number of faces owned by a user.
func (r *FaceRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM faces WHERE owner_id = $1", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count faces by owner: %w", err)
	}
	return count, nil
}

// Count returns the total number of faces stored.
func (r *FaceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM faces").Scan(&count); err != nil {
		return 0, fmt.Errorf("count faces: %w", err)
	}
	return count, nil
}

// GetAll retrieves every face, used to warm the in-memory index.
func (r *FaceRepository) GetAll(ctx context.Context) ([]database.Face, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner_id, embedding, model, dim, created_at
		FROM faces
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query all faces: %w", err)
	}
	defer rows.Close()

	return scanFaces(rows)
}

// FindSimilar finds faces with similar embeddings using cosine distance.
// Uses the in-memory HNSW index when enabled, otherwise pgvector.
func (r *FaceRepository) FindSimilar(
	ctx context.Context, embedding []float32, limit int,
) ([]database.FaceMatch, error) {
	if r.index != nil && !r.index.IsEmpty() {
		return r.index.Search(embedding, limit)
	}
	return r.findSimilarPostgres(ctx, embedding, limit)
}

// findSimilarPostgres runs the similarity query through pgvector with
// ef_search raised to match the in-memory index recall.
func (r *FaceRepository) findSimilarPostgres(
	ctx context.Context, embedding []float32, limit int,
) ([]database.FaceMatch, error) {
	tx, err := r.pool.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", database.HNSWEfSearch)); err != nil {
		return nil, fmt.Errorf("set ef_search: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, owner_id, embedding, model, dim, created_at,
		       embedding <=> $1::vector AS distance
		FROM faces
		ORDER BY distance
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("query similar faces: %w", err)
	}
	defer rows.Close()

	var matches []database.FaceMatch
	for rows.Next() {
		var m database.FaceMatch
		var vec pgvector.Vector
		err := rows.Scan(&m.Face.ID, &m.Face.OwnerID, &vec, &m.Face.Model, &m.Face.Dim, &m.Face.CreatedAt, &m.Distance)
		if err != nil {
			return nil, fmt.Errorf("scan face match: %w", err)
		}
		m.Face.Embedding = vec.Slice()
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate face matches: %w", err)
	}
	return matches, nil
}

// EnableIndex builds the in-memory HNSW index from stored faces.
// This should be called once at startup.
func (r *FaceRepository) EnableIndex(ctx context.Context) error {
	faces, err := r.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load faces: %w", err)
	}

	index := database.NewFaceIndex()
	if err := index.Build(faces); err != nil {
		return fmt.Errorf("failed to build HNSW index: %w", err)
	}

	r.index = index
	return nil
}

// IndexCount returns the number of faces in the in-memory index.
func (r *FaceRepository) IndexCount() int {
	if r.index == nil {
		return 0
	}
	return r.index.Count()
}

// Verify interface compliance.
var _ database.FaceStore = (*FaceRepository)(nil)
