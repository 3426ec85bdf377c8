// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"sync"

	deliverycontext "authcore/internal/delivery/context"
	"authcore/internal/domain/entity"
	domainerrors "authcore/internal/domain/errors"
	"authcore/internal/domain/repository"
	"authcore/internal/domain/service"
	"authcore/internal/errors"
	"authcore/internal/usecase"

	"go.uber.org/fx"
)

// Operation names used for attempt-limiter keys and metric labels.
const (
	opRegister = "register"
	opLogin    = "login"
	opValidate = "validate"

	outcomeSuccess = "success"
)

// dummyPassword is hashed once and compared against when a login names an unknown
// email, so both failure paths spend one bcrypt comparison.
const dummyPassword = "authcore-timing-equalizer"

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	limiter      service.AttemptLimiter
	metrics      service.AuthMetrics
	logger       *slog.Logger

	dummyHash func() string
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Limiter      service.AttemptLimiter
	Metrics      service.AuthMetrics
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	srv := &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		limiter:      params.Limiter,
		metrics:      params.Metrics,
		logger:       params.Logger,
	}
	srv.dummyHash = sync.OnceValue(func() string {
		hash, err := srv.hasher.Hash(dummyPassword)
		if err != nil {
			srv.logger.Error("Failed to prepare dummy password hash", slog.Any("error", err))

			return ""
		}

		return hash
	})

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a user for an unused email and issues a token for it.
func (srv *authService) Register(ctx context.Context, input usecase.RegisterInput) (_ *usecase.AuthOutput, err error) {
	defer func() { srv.observe(opRegister, err) }()

	if err := srv.allow(ctx, opRegister, input.Email); err != nil {
		return nil, err
	}

	// Cheap early rejection so a taken email never costs a bcrypt round.
	exists, err := srv.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		srv.log(ctx).Error("Failed to check email", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to check email")
	}
	if exists {
		srv.log(ctx).Info("Registration rejected, email already registered")

		return nil, errors.Wrap(domainerrors.ErrDuplicateCredential, "register")
	}

	// Hash outside the transaction so no store lock is held during bcrypt.
	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindValidation {
			return nil, errors.Wrap(err, "register")
		}
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	created := &entity.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
	}
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		exists, err := userRepo.ExistsByEmail(ctx, input.Email)
		if err != nil {
			return errors.Wrap(err, "failed to check email")
		}
		if exists {
			return domainerrors.ErrDuplicateCredential
		}

		if err := userRepo.Create(ctx, created); err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateCredential) {
			srv.log(ctx).Info("Registration rejected, email already registered")

			return nil, errors.Wrap(domainerrors.ErrDuplicateCredential, "register")
		}
		srv.log(ctx).Error("Failed to execute registration transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Info("User registered", slog.String("userID", created.ID.String()))

	return srv.issue(created)
}

// Login verifies the credentials and issues a token. An unknown email and a wrong
// password both yield ErrInvalidCredentials.
func (srv *authService) Login(ctx context.Context, input usecase.LoginInput) (_ *usecase.AuthOutput, err error) {
	defer func() { srv.observe(opLogin, err) }()

	if err := srv.allow(ctx, opLogin, input.Email); err != nil {
		return nil, err
	}

	user, ok, err := srv.verify(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		srv.log(ctx).Info("Login rejected")

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login")
	}

	srv.log(ctx).Debug("User logged in", slog.String("userID", user.ID.String()))

	return srv.issue(user)
}

// ValidateCredentials backs the local strategy. A mismatch is (nil, false, nil);
// only store failures and attempt-limit denials are errors. It shares the login
// attempt budget so the local route cannot be used to guess past the limiter.
func (srv *authService) ValidateCredentials(ctx context.Context, email, password string) (*entity.PublicUser, bool, error) {
	if err := srv.allow(ctx, opLogin, email); err != nil {
		srv.observe(opValidate, err)

		return nil, false, err
	}

	user, ok, err := srv.verify(ctx, email, password)
	if err != nil {
		srv.observe(opValidate, err)

		return nil, false, err
	}
	if !ok {
		srv.observe(opValidate, domainerrors.ErrInvalidCredentials)

		return nil, false, nil
	}
	srv.observe(opValidate, nil)

	public := user.Public()

	return &public, true, nil
}

// verify looks the user up and compares the password, spending one hash comparison either way.
func (srv *authService) verify(ctx context.Context, email, password string) (*entity.User, bool, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		if dummy := srv.dummyHash(); dummy != "" {
			srv.hasher.Check(password, dummy)
		}

		return nil, false, nil
	}
	if err != nil {
		srv.log(ctx).Error("Failed to find user by email", slog.Any("error", err))

		return nil, false, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(password, user.PasswordHash) {
		return nil, false, nil
	}

	return user, true, nil
}

func (srv *authService) issue(user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(service.Claims{
		Subject: user.ID.String(),
		Email:   user.Email,
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return &usecase.AuthOutput{
		AccessToken: token,
		User:        user.Public(),
	}, nil
}

func (srv *authService) allow(ctx context.Context, op, email string) error {
	if err := srv.limiter.Allow(ctx, op+":"+email); err != nil {
		srv.log(ctx).Warn("Attempt limit reached", slog.String("operation", op))

		return errors.Wrap(err, op)
	}

	return nil
}

func (srv *authService) observe(op string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = domainerrors.KindOf(err).String()
	}
	srv.metrics.ObserveOutcome(op, outcome)
}
