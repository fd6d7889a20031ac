package database

// HNSW tuning for the in-memory face index. The pgvector index in the
// migrations uses the server defaults; these only affect the coder/hnsw graph.
const (
	// HNSWMaxNeighbors is the M parameter of the HNSW graph.
	HNSWMaxNeighbors = 16

	// HNSWEfSearch is applied via SET LOCAL when falling back to pgvector
	// queries, so both paths have comparable recall.
	HNSWEfSearch = 200
)
