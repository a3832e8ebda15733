package dto

import (
	"time"

	"github.com/Additional-Code/orderdesk/internal/entity"
)

// UserResponse is a user without credentials.
type UserResponse struct {
	ID            int64      `json:"id"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	Role          string     `json:"role"`
	AccountStatus string     `json:"accountStatus"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// LoginResponse carries the session token issued on login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		AccountStatus: u.AccountStatus,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
	}
}

func NewUserList(users []entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
