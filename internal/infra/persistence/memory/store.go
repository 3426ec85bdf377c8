// Package memory provides an in-process user store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"

	"github.com/google/uuid"
)

// Store keeps users in maps indexed by id and email.
type Store struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]entity.User
	byEmail map[string]uuid.UUID

	// txMu serializes transactions so an exists-check and the following create
	// cannot interleave with another registration.
	txMu sync.Mutex
	now  func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byID:    make(map[uuid.UUID]entity.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

// NewUserRepository returns a repository reading and writing the store directly.
func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

// NewTransactionManager returns a TransactionManager backed by the store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

func (s *Store) lookupByEmail(email string) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return entity.User{}, false
	}

	return s.byID[id], true
}

func (s *Store) lookupByID(id uuid.UUID) (entity.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]

	return user, ok
}

// insert applies users atomically, failing without changes if any email is taken.
func (s *Store) insert(users ...entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(users))
	for _, user := range users {
		if _, taken := s.byEmail[user.Email]; taken {
			return domainerrors.ErrDuplicateCredential.WrapMessage("email already registered")
		}
		if _, dup := seen[user.Email]; dup {
			return domainerrors.ErrDuplicateCredential.WrapMessage("email already registered")
		}
		seen[user.Email] = struct{}{}
	}

	for _, user := range users {
		s.byID[user.ID] = user
		s.byEmail[user.Email] = user.ID
	}

	return nil
}

// prepare fills in the generated fields of a new user.
func (s *Store) prepare(user *entity.User) error {
	if user.Email == "" {
		return domainerrors.ErrValidationFailed.WrapMessage("email is required")
	}

	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate user id")
		}
		user.ID = id
	}

	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	return nil
}

type userRepository struct {
	store *Store
}

func (r *userRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.store.lookupByEmail(email)

	return ok, nil
}

func (r *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	user, ok := r.store.lookupByEmail(email)
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (r *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.store.lookupByID(id)
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return &user, nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	if err := r.store.prepare(user); err != nil {
		return err
	}

	return r.store.insert(*user)
}
