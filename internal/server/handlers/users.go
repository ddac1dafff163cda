package handlers

import (
	"context"

	"github.com/maruel/blogdb/internal/blog"
	"github.com/maruel/blogdb/internal/server/dto"
)

// UserHandler handles user requests.
type UserHandler struct {
	users blog.UserRepository
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc *Services) *UserHandler {
	return &UserHandler{users: svc.Users}
}

// ListUsers returns all users. An empty table yields an empty list.
func (h *UserHandler) ListUsers(ctx context.Context, _ *dto.ListUsersRequest) (*dto.ListUsersResponse, error) {
	users, err := h.users.All()
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return usersToResponse(users), nil
}

// CreateUser adds a user. The username must not be taken.
func (h *UserHandler) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := checkUnique(h.users.Exists, "username", req.Username); err != nil {
		return nil, err
	}
	u, err := h.users.Add(&blog.User{Username: req.Username, Password: req.Password})
	if err != nil {
		return nil, dto.StorageError(err)
	}
	return userToResponse(u), nil
}

// GetUser returns one user.
func (h *UserHandler) GetUser(ctx context.Context, req *dto.GetUserRequest) (*dto.UserResponse, error) {
	u, err := h.users.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "user", req.ID)
	}
	return userToResponse(u), nil
}

// UpdateUser replaces a user. A new username must not be taken.
func (h *UserHandler) UpdateUser(ctx context.Context, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	cur, err := h.users.Get(req.ID)
	if err != nil {
		return nil, storeError(err, "user", req.ID)
	}
	if cur.Username != req.Username {
		if err := checkUnique(h.users.Exists, "username", req.Username); err != nil {
			return nil, err
		}
	}
	u := &blog.User{ID: req.ID, Username: req.Username, Password: req.Password}
	if err := h.users.Update(u); err != nil {
		return nil, storeError(err, "user", req.ID)
	}
	return userToResponse(u), nil
}

// PatchUser changes a user's password.
func (h *UserHandler) PatchUser(ctx context.Context, req *dto.PatchUserRequest) (*dto.UserResponse, error) {
	u, err := h.users.Patch(req.ID, req.Password)
	if err != nil {
		return nil, storeError(err, "user", req.ID)
	}
	return userToResponse(u), nil
}

// DeleteUser removes a user and returns it.
func (h *UserHandler) DeleteUser(ctx context.Context, req *dto.DeleteUserRequest) (*dto.UserResponse, error) {
	u, err := h.users.Delete(req.ID)
	if err != nil {
		return nil, storeError(err, "user", req.ID)
	}
	return userToResponse(u), nil
}
