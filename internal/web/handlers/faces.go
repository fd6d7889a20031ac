package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"faceregistry/internal/database"
	"faceregistry/internal/embedding"
	"faceregistry/internal/faces"
)

// maxUploadSize bounds the multipart form parser memory, not the upload
// itself; larger files spill to disk.
const maxUploadSize = 32 << 20 // 32 MB

// FacesHandler handles face registration and matching endpoints.
type FacesHandler struct {
	service *faces.Service
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(service *faces.Service) *FacesHandler {
	return &FacesHandler{service: service}
}

type faceResponse struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Model     string    `json:"model"`
	Dim       int       `json:"dim"`
	CreatedAt time.Time `json:"created_at"`
}

func toFaceResponse(f *database.Face) faceResponse {
	return faceResponse{
		ID:        f.ID,
		OwnerID:   f.OwnerID,
		Model:     f.Model,
		Dim:       f.Dim,
		CreatedAt: f.CreatedAt,
	}
}

// readUploadedFile extracts the "file" part from a multipart request.
func readUploadedFile(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, err
	}
	return header.Filename, data, nil
}

// AddFace handles POST /users/{id}/add-face.
func (h *FacesHandler) AddFace(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	filename, data, err := readUploadedFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}

	_, err = h.service.Register(r.Context(), id, filename, data)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrUserNotFound):
			respondError(w, http.StatusNotFound, msgUserNotFound)
		case errors.Is(err, embedding.ErrExtraction):
			log.Printf("face registration failed for user %d: %v", id, err)
			respondError(w, http.StatusBadGateway, "embedding extraction failed")
		default:
			log.Printf("face registration failed for user %d: %v", id, err)
			respondError(w, http.StatusInternalServerError, errInternal)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Face added successfully",
	})
}

// ListFaces handles GET /users/{id}/faces.
func (h *FacesHandler) ListFaces(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	list, err := h.service.ListByOwner(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	out := make([]faceResponse, 0, len(list))
	for i := range list {
		out = append(out, toFaceResponse(&list[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

type faceMatchResponse struct {
	Face     faceResponse `json:"face"`
	Distance float64      `json:"distance"`
}

// Match handles POST /faces/match: embeds the probe image and returns the
// nearest registered faces.
func (h *FacesHandler) Match(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readUploadedFile(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}

	limit := 10
	if s := r.FormValue("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	matches, err := h.service.Match(r.Context(), data, limit)
	if err != nil {
		if errors.Is(err, embedding.ErrExtraction) {
			log.Printf("face match failed (file=%q): %v", sanitizeForLog(filename), err)
			respondError(w, http.StatusBadGateway, "embedding extraction failed")
			return
		}
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	out := make([]faceMatchResponse, 0, len(matches))
	for i := range matches {
		out = append(out, faceMatchResponse{
			Face:     toFaceResponse(&matches[i].Face),
			Distance: matches[i].Distance,
		})
	}
	respondJSON(w, http.StatusOK, out)
}
