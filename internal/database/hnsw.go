package database

import (
	"errors"
	"sync"

	"github.com/coder/hnsw"
)

// FaceIndex wraps an in-memory HNSW graph over face embeddings for
// O(log N) similarity search. It is rebuilt from the store at startup
// and kept in sync as faces are added.
type FaceIndex struct {
	graph    *hnsw.Graph[int64]
	idToFace map[int64]*Face
	mu       sync.RWMutex
}

// NewFaceIndex creates a new empty face index.
func NewFaceIndex() *FaceIndex {
	return &FaceIndex{
		idToFace: make(map[int64]*Face),
	}
}

func newFaceGraph() *hnsw.Graph[int64] {
	g := hnsw.NewGraph[int64]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build replaces the index contents with the given faces.
func (h *FaceIndex) Build(faces []Face) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(faces) == 0 {
		h.graph = nil
		h.idToFace = make(map[int64]*Face)
		return nil
	}

	g := newFaceGraph()
	h.idToFace = make(map[int64]*Face, len(faces))

	for i := range faces {
		face := &faces[i]
		if len(face.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(face.ID, face.Embedding))
		h.idToFace[face.ID] = face
	}

	h.graph = g
	return nil
}

// Add inserts a single face into the index.
func (h *FaceIndex) Add(face *Face) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(face.Embedding) == 0 {
		return
	}
	if h.graph == nil {
		h.graph = newFaceGraph()
	}
	h.graph.Add(hnsw.MakeNode(face.ID, face.Embedding))
	h.idToFace[face.ID] = face
}

// Delete removes a face from search results. The HNSW graph does not
// support true deletion; results are filtered through idToFace instead.
func (h *FaceIndex) Delete(id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.idToFace, id)
}

// Search finds the k nearest faces to the query embedding, nearest first.
func (h *FaceIndex) Search(query []float32, k int) ([]FaceMatch, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, errors.New("index not initialized")
	}

	neighbors := h.graph.Search(query, k)

	matches := make([]FaceMatch, 0, len(neighbors))
	for _, n := range neighbors {
		face, ok := h.idToFace[n.Key]
		if !ok {
			continue // deleted
		}
		matches = append(matches, FaceMatch{
			Face:     *face,
			Distance: CosineDistance(query, n.Value),
		})
	}

	return matches, nil
}

// Count returns the number of searchable faces in the index.
func (h *FaceIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToFace)
}

// IsEmpty reports whether the index holds no faces.
func (h *FaceIndex) IsEmpty() bool {
	return h.Count() == 0
}
