package impl

import (
	"context"
	"testing"

	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	mockRepo "authcore/internal/mocks/repository"
	"authcore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// profileServiceFixtures holds all test dependencies for profile service tests.
type profileServiceFixtures struct {
	service  usecase.ProfileUsecase
	userRepo *mockRepo.MockUserRepository
}

func createTestProfileService(t *testing.T) profileServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	service := NewProfileService(ProfileServiceParams{
		UserRepo: userRepo,
		Logger:   newDiscardLogger(),
	})

	return profileServiceFixtures{
		service:  service,
		userRepo: userRepo,
	}
}

func TestProfileService_GetProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	fx.userRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{
		ID:           userID,
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: "hashed_password",
	}, nil)

	profile, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, entity.PublicUser{ID: userID.String(), Email: "test@example.com", Username: "testuser"}, *profile)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	fx.userRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

	profile, err := fx.service.GetProfile(ctx, userID)

	assert.Nil(t, profile)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestProfileService_GetProfile_StoreError(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	fx.userRepo.EXPECT().FindByID(ctx, userID).Return(nil, errors.New("connection reset"))

	profile, err := fx.service.GetProfile(ctx, userID)

	assert.Nil(t, profile)
	require.Error(t, err)
	assert.Equal(t, domainerrors.KindInternal, domainerrors.KindOf(err))
}
