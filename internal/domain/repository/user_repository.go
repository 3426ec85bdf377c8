// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"authcore/internal/domain/entity"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the user store capability the credential flows depend on.
// Implementations must enforce email uniqueness themselves; Create reports a violation
// as domainerrors.ErrDuplicateCredential.
type UserRepository interface {
	// ExistsByEmail reports whether a user with this email is already on file.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindByEmail retrieves a single user by their email address.
	// It returns ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	// It returns ErrUserNotFound when no user matches.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// Create persists a new user and fills in its ID and timestamps.
	Create(ctx context.Context, user *entity.User) error
}
