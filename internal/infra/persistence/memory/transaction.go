package memory

import (
	"context"

	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"

	"github.com/google/uuid"
)

type transactionManager struct {
	store *Store
}

// Execute stages writes made through the factory and applies them only when fn succeeds.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	tx := &txRepository{base: &userRepository{store: tm.store}}
	if err := fn(tx); err != nil {
		return err
	}

	return tm.store.insert(tx.pending...)
}

// txRepository implements both RepositoryFactory and a UserRepository that sees
// committed rows plus its own staged inserts.
type txRepository struct {
	base    *userRepository
	pending []entity.User
}

func (tx *txRepository) UserRepo() repository.UserRepository {
	return tx
}

func (tx *txRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if _, ok := tx.pendingByEmail(email); ok {
		return true, nil
	}

	return tx.base.ExistsByEmail(ctx, email)
}

func (tx *txRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if user, ok := tx.pendingByEmail(email); ok {
		return &user, nil
	}

	return tx.base.FindByEmail(ctx, email)
}

func (tx *txRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	for _, user := range tx.pending {
		if user.ID == id {
			return &user, nil
		}
	}

	return tx.base.FindByID(ctx, id)
}

func (tx *txRepository) Create(ctx context.Context, user *entity.User) error {
	if exists, _ := tx.ExistsByEmail(ctx, user.Email); exists {
		return domainerrors.ErrDuplicateCredential.WrapMessage("email already registered")
	}

	if err := tx.base.store.prepare(user); err != nil {
		return err
	}
	tx.pending = append(tx.pending, *user)

	return nil
}

func (tx *txRepository) pendingByEmail(email string) (entity.User, bool) {
	for _, user := range tx.pending {
		if user.Email == email {
			return user, true
		}
	}

	return entity.User{}, false
}
