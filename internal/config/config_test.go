package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Embedding.Model != "arcface" {
		t.Errorf("expected default model arcface, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dim != 512 {
		t.Errorf("expected dim 512 from the model registry, got %d", cfg.Embedding.Dim)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default 25 open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default 5 idle conns, got %d", cfg.Database.MaxIdleConns)
	}
	if !cfg.Database.FaceIndex {
		t.Error("expected face index enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL", "clip")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("FACE_INDEX", "false")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://app.example.com")

	cfg := Load()

	if cfg.Embedding.Model != "clip" {
		t.Errorf("expected model clip, got %q", cfg.Embedding.Model)
	}
	if cfg.Embedding.Dim != 768 {
		t.Errorf("expected dim 768 for clip, got %d", cfg.Embedding.Dim)
	}
	if cfg.Database.MaxOpenConns != 50 {
		t.Errorf("expected 50 open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.FaceIndex {
		t.Error("expected face index disabled")
	}
	if cfg.Web.AllowedOrigins != "https://app.example.com" {
		t.Errorf("unexpected allowed origins %q", cfg.Web.AllowedOrigins)
	}
}

func TestLoad_ExplicitDimWins(t *testing.T) {
	t.Setenv("EMBEDDING_MODEL", "arcface")
	t.Setenv("EMBEDDING_DIM", "128")

	cfg := Load()
	if cfg.Embedding.Dim != 128 {
		t.Errorf("expected explicit dim 128, got %d", cfg.Embedding.Dim)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected fallback 25, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestModelDim_UnknownModel(t *testing.T) {
	cfg := Load()
	if dim := cfg.ModelDim("does-not-exist"); dim != 0 {
		t.Errorf("expected 0 for unknown model, got %d", dim)
	}
}
