// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"authcore/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Email    string
	Password string
	Username string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AuthOutput is returned by register and login. It never carries the password hash.
type AuthOutput struct {
	AccessToken string            `json:"access_token"`
	User        entity.PublicUser `json:"user"`
}

// AuthUsecase defines the credential operations.
// This is the contract that the delivery layer depends on.
type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input LoginInput) (*AuthOutput, error)
	// ValidateCredentials reports whether email and password match a stored user.
	// A mismatch is (nil, false, nil); only store failures return an error.
	ValidateCredentials(ctx context.Context, email, password string) (*entity.PublicUser, bool, error)
}
