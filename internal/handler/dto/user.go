// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/penshort/user-service/internal/model"
)

// CreatedAtLayout is the wire format of created_at.
const CreatedAtLayout = time.RFC3339Nano

// CreateUserRequest represents the request body for creating a user.
// Pointers distinguish an absent or null key from an empty string.
type CreateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// CreateUserResponse echoes the stored identity of a new user.
type CreateUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

// UserListResponse is the body of GET /users.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Count int            `json:"count"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(CreatedAtLayout),
	}
}

// ToCreateUserResponse converts a freshly inserted user.
func ToCreateUserResponse(user *model.User) CreateUserResponse {
	return CreateUserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToUserListResponse converts users to the list body. Users is never null.
func ToUserListResponse(users []model.User) UserListResponse {
	data := make([]UserResponse, 0, len(users))
	for i := range users {
		data = append(data, ToUserResponse(&users[i]))
	}
	return UserListResponse{
		Users: data,
		Count: len(data),
	}
}
