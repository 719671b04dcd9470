package auth

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned for any failed operator login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service defines operator authentication for the POS API.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	// Verify parses a bearer token and returns its subject.
	Verify(tokenString string) (string, error)
}

// LoginRequest is the payload of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
