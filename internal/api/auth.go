package api

import "github.com/pribylovaa/go-diary/internal/models"

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse — выданный токен доступа.
type AuthResponse struct {
	Token     string      `json:"token"`
	ExpiresAt int64       `json:"expiresAt"` // Unix UTC
	User      models.User `json:"user"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}
