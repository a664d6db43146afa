package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/user-service/internal/handler/dto"
	"github.com/penshort/user-service/internal/metrics"
	"github.com/penshort/user-service/internal/model"
	"github.com/penshort/user-service/internal/repository"
)

// Error messages returned to clients.
const (
	msgMissingFields = "Missing username or email"
	msgUserExists    = "Username or email already exists"
	msgUserNotFound  = "User not found"
	msgBodyTooLarge  = "Request body too large"
)

// UserStore is the persistence the user endpoints depend on.
// *repository.Repository satisfies it.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, username, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	store   UserStore
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore, recorder metrics.Recorder, logger *slog.Logger) *UserHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserHandler{
		store:   store,
		metrics: recorder,
		logger:  logger,
	}
}

// List handles GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.handleStoreError(w, err)
		return
	}

	h.metrics.SetUsersTotal(len(users))
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Create handles POST /users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCreateUser(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.logger.Warn("create user request body too large", "limit", maxBytesErr.Limit)
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		h.logger.Warn("invalid create user request", "error", err)
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	user, err := h.store.CreateUser(r.Context(), *req.Username, *req.Email)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}

	h.logger.Info("Created user: "+strconv.FormatInt(user.ID, 10), "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToCreateUserResponse(user))
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, msgUserNotFound)
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		h.handleStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// handleStoreError maps repository errors to HTTP responses.
// Unclassified errors surface their message verbatim.
func (h *UserHandler) handleStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		h.logger.Warn("user lookup missed", "error", err)
		writeError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, repository.ErrUserExists):
		h.logger.Warn("user conflict", "error", err)
		writeError(w, http.StatusConflict, msgUserExists)
	default:
		h.logger.Error("Error: "+err.Error(), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseUserID accepts only a positive int64 written as plain ASCII digits.
func parseUserID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

var errMissingFields = errors.New("username and email are required")

// decodeCreateUser parses a single JSON object carrying string username and
// email keys. Null values count as missing.
func decodeCreateUser(body io.Reader) (*dto.CreateUserRequest, error) {
	if body == nil {
		return nil, errMissingFields
	}

	dec := json.NewDecoder(body)

	var req dto.CreateUserRequest
	if err := dec.Decode(&req); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, errors.New("request body must contain a single JSON object")
	}

	if req.Username == nil || req.Email == nil {
		return nil, errMissingFields
	}

	return &req, nil
}
