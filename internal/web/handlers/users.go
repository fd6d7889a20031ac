package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"faceregistry/internal/database"
)

const (
	defaultListLimit = 100

	msgEmailRegistered = "Email already registered"
	msgUserNotFound    = "User not found"
)

// UsersHandler handles the user CRUD endpoints.
type UsersHandler struct {
	users database.UserStore
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(users database.UserStore) *UsersHandler {
	return &UsersHandler{users: users}
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func toUserResponse(u *database.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		IsActive: u.IsActive,
	}
}

// Create handles POST /users/. The eager email lookup produces the friendly
// 400; the UNIQUE constraint catches the race between concurrent signups.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	existing, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}
	if existing != nil {
		respondError(w, http.StatusBadRequest, msgEmailRegistered)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	user, err := h.users.Create(r.Context(), database.NewUser{
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hash),
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, msgEmailRegistered)
			return
		}
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

// List handles GET /users/ with skip/limit pagination.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultListLimit)

	users, err := h.users.List(r.Context(), skip, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// Get handles GET /users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, errInternal)
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// userIDParam parses the {id} route parameter.
func userIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryInt parses a non-negative integer query parameter with a default.
func queryInt(r *http.Request, key string, defaultVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
