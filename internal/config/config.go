package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Web       WebConfig
	Auth      AuthConfig
	Embedding EmbeddingConfig
	Database  DatabaseConfig
	Models    ModelsConfig
}

type WebConfig struct {
	AllowedOrigins string // comma-separated CORS allow-list; empty means any origin
}

type AuthConfig struct {
	TokenSecret string // secret for signing access tokens
}

type EmbeddingConfig struct {
	URL   string // embedding service base URL, defaults to http://localhost:8000
	Model string // defaults to arcface
	Dim   int    // expected vector dimension, defaults to the model registry entry
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
	FaceIndex    bool   // build the in-memory HNSW face index at startup (default true)
}

type ModelsConfig struct {
	Models map[string]ModelSpec `yaml:"models"`
}

type ModelSpec struct {
	Dim int `yaml:"dim"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean, defaulting when unset
// or unparsable.
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	cfg := &Config{
		Web: WebConfig{
			AllowedOrigins: os.Getenv("WEB_ALLOWED_ORIGINS"),
		},
		Auth: AuthConfig{
			TokenSecret: os.Getenv("AUTH_TOKEN_SECRET"),
		},
		Embedding: EmbeddingConfig{
			URL:   os.Getenv("EMBEDDING_URL"),
			Model: envString("EMBEDDING_MODEL", "arcface"),
			Dim:   envInt("EMBEDDING_DIM", 0),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
			FaceIndex:    envBool("FACE_INDEX", true),
		},
		Models: models,
	}

	// Fall back to the registry dimension for the configured model.
	if cfg.Embedding.Dim == 0 {
		cfg.Embedding.Dim = cfg.ModelDim(cfg.Embedding.Model)
	}

	return cfg
}

// ModelDim returns the registered vector dimension for an embedding model,
// or 0 for unknown models.
func (c *Config) ModelDim(model string) int {
	if spec, ok := c.Models.Models[model]; ok {
		return spec.Dim
	}
	return 0
}
