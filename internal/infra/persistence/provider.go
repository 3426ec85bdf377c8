// Package persistence selects the user store backing the credential flows.
package persistence

import (
	"log/slog"

	"authcore/config"
	"authcore/internal/domain/repository"
	"authcore/internal/errors"
	"authcore/internal/infra/persistence/memory"
	"authcore/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params holds dependencies for the store, injected by Fx
type Params struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// Result exposes the selected store to the rest of the graph.
type Result struct {
	fx.Out

	UserRepository     repository.UserRepository
	TransactionManager repository.TransactionManager
}

// NewStore builds the user store named by storage.driver.
func NewStore(params Params) (Result, error) {
	driver := params.Config.Storage.Driver

	switch driver {
	case config.StorageDriverPostgres:
		db, err := postgres.New(postgres.Params{
			Lc:     params.Lc,
			Config: params.Config,
			Logger: params.Logger,
		})
		if err != nil {
			return Result{}, err
		}
		params.Logger.Info("Using PostgreSQL user store")

		return Result{
			UserRepository:     postgres.NewUserRepository(db),
			TransactionManager: postgres.NewTransactionManager(db),
		}, nil
	case config.StorageDriverMemory:
		params.Logger.Warn("Using in-memory user store, data is lost on restart")
		store := memory.NewStore()

		return Result{
			UserRepository:     memory.NewUserRepository(store),
			TransactionManager: memory.NewTransactionManager(store),
		}, nil
	default:
		return Result{}, errors.Errorf("unknown storage driver: %s", driver)
	}
}
