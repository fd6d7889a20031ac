package faces

import (
	"context"
	"errors"
	"testing"

	"faceregistry/internal/database"
	"faceregistry/internal/database/mock"
	"faceregistry/internal/embedding"
)

// fakeExtractor returns a canned result or error without any HTTP traffic.
type fakeExtractor struct {
	result *embedding.Result
	err    error
	calls  int
}

func (f *fakeExtractor) Extract(ctx context.Context, imageData []byte) (*embedding.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestResult(vec []float32) *embedding.Result {
	return &embedding.Result{
		Embedding:  vec,
		Model:      "arcface",
		Pretrained: "glint360k",
		Dim:        len(vec),
	}
}

func createTestUser(t *testing.T, store *mock.Store, email string) *database.User {
	t.Helper()
	user, err := store.Create(context.Background(), database.NewUser{
		Email:    email,
		Name:     "Test User",
		Password: "hashed",
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func TestService_Register(t *testing.T) {
	store := mock.NewStore()
	user := createTestUser(t, store, "alice@example.com")
	extractor := &fakeExtractor{result: newTestResult([]float32{0.1, 0.2, 0.3})}
	service := NewService(store, store, extractor)

	face, err := service.Register(context.Background(), user.ID, "selfie.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if face.ID == 0 {
		t.Error("expected a persisted face id")
	}
	if face.OwnerID != user.ID {
		t.Errorf("expected owner %d, got %d", user.ID, face.OwnerID)
	}
	if face.Model != "arcface" || face.Dim != 3 {
		t.Errorf("unexpected face metadata: model=%q dim=%d", face.Model, face.Dim)
	}

	count, err := store.CountByOwner(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 face row, got %d", count)
	}
}

func TestService_RegisterUnknownUser(t *testing.T) {
	store := mock.NewStore()
	extractor := &fakeExtractor{result: newTestResult([]float32{1, 0, 0})}
	service := NewService(store, store, extractor)

	_, err := service.Register(context.Background(), 42, "selfie.jpg", []byte("image-bytes"))
	if !errors.Is(err, database.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	// The owner is resolved before any file processing.
	if extractor.calls != 0 {
		t.Errorf("expected no extraction calls, got %d", extractor.calls)
	}
}

func TestService_RegisterExtractionFailure(t *testing.T) {
	store := mock.NewStore()
	user := createTestUser(t, store, "bob@example.com")
	extractor := &fakeExtractor{err: embedding.ErrExtraction}
	service := NewService(store, store, extractor)

	_, err := service.Register(context.Background(), user.ID, "selfie.jpg", []byte("image-bytes"))
	if !errors.Is(err, embedding.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}

	count, err := store.CountByOwner(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no face rows after failed extraction, got %d", count)
	}
}

func TestService_ListByOwner(t *testing.T) {
	store := mock.NewStore()
	user := createTestUser(t, store, "carol@example.com")
	extractor := &fakeExtractor{result: newTestResult([]float32{0, 1, 0})}
	service := NewService(store, store, extractor)

	for i := 0; i < 2; i++ {
		if _, err := service.Register(context.Background(), user.ID, "f.jpg", []byte("data")); err != nil {
			t.Fatalf("register failed: %v", err)
		}
	}

	faces, err := service.ListByOwner(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(faces) != 2 {
		t.Errorf("expected 2 faces, got %d", len(faces))
	}

	if _, err := service.ListByOwner(context.Background(), 999); !errors.Is(err, database.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound for unknown owner, got %v", err)
	}
}

func TestService_Match(t *testing.T) {
	store := mock.NewStore()
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")

	seed := func(owner int64, vec []float32) {
		t.Helper()
		if _, err := store.Save(context.Background(), &database.Face{
			OwnerID:   owner,
			Embedding: vec,
			Model:     "arcface",
			Dim:       len(vec),
		}); err != nil {
			t.Fatalf("failed to seed face: %v", err)
		}
	}
	seed(alice.ID, []float32{1, 0, 0})
	seed(bob.ID, []float32{0, 1, 0})

	extractor := &fakeExtractor{result: newTestResult([]float32{0.95, 0.05, 0})}
	service := NewService(store, store, extractor)

	matches, err := service.Match(context.Background(), []byte("probe"), 0)
	if err != nil {
		t.Fatalf("match failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Face.OwnerID != alice.ID {
		t.Errorf("expected nearest match owned by %d, got %d", alice.ID, matches[0].Face.OwnerID)
	}
	if matches[0].Distance > matches[1].Distance {
		t.Error("expected matches ordered by distance")
	}
}

func TestService_MatchExtractionFailure(t *testing.T) {
	store := mock.NewStore()
	extractor := &fakeExtractor{err: embedding.ErrExtraction}
	service := NewService(store, store, extractor)

	if _, err := service.Match(context.Background(), []byte("probe"), 5); !errors.Is(err, embedding.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got %v", err)
	}
}
