// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/middleware"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/pkg/logger"
)

// UserStore persists user accounts.
type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error)
}

// TokenConfig controls the tokens issued at login.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	// Admins lists emails granted the admin scope.
	Admins []string
}

// UserHandler handles account endpoints.
type UserHandler struct {
	store  UserStore
	tokens TokenConfig
	logger *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(s UserStore, tokens TokenConfig, log *logger.Logger) *UserHandler {
	return &UserHandler{
		store:  s,
		tokens: tokens,
		logger: log,
	}
}

// List handles GET /users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Register handles POST /register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.store.CreateUser(r.Context(), &req)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, store.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("failed to authenticate user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	token, err := middleware.IssueToken(h.tokens.Secret, user.ID, user.Email, h.scopes(user), h.tokens.TTL)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{User: *user, Token: token})
}

// Update handles PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Empty() {
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), id, &req)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
		return
	case errors.Is(err, store.ErrEmptyUpdate):
		writeError(w, http.StatusBadRequest, "no fields to update")
		return
	case err != nil:
		h.logger.Error("failed to update user", zap.Int64("user_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) scopes(u *model.User) []string {
	scopes := []string{middleware.ScopeGuest}
	if u.IsHost {
		scopes = append(scopes, middleware.ScopeHost)
	}
	for _, admin := range h.tokens.Admins {
		if strings.EqualFold(admin, u.Email) {
			scopes = append(scopes, middleware.ScopeAdmin)
			break
		}
	}
	return scopes
}
