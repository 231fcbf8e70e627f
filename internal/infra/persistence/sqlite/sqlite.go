// Package sqlite contains the concrete implementation of the persistence
// layer using GORM over a local SQLite database file.
package sqlite

import (
	"context"
	"log/slog"

	"vigil/config"
	"vigil/internal/domain/lifecycle"
	"vigil/internal/errors"
	"vigil/internal/infra/persistence/model"

	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the local session database and migrates its schema.
func New(params Params) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(params.Config.Session.Path), &gorm.Config{
		// The store holds two rows; GORM's implicit per-statement transaction
		// is replaced by the explicit transactions in the repository.
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session database")
	}

	if err := db.AutoMigrate(&model.SessionEntryModel{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate session schema")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session sql.DB")
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping session database")
			}

			params.Logger.Info("Session database ready",
				slog.String("path", params.Config.Session.Path))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	return db, nil
}
