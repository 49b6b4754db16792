package db

import (
	"context"
	"fmt"

	"shift_coordination_system/configs"

	"github.com/go-pg/migrations/v8"
	"github.com/go-pg/pg/v10"
	"go.uber.org/zap"
)

type dbLogger struct {
	logger *zap.SugaredLogger
}

func (d dbLogger) BeforeQuery(c context.Context, q *pg.QueryEvent) (context.Context, error) {
	query, err := q.FormattedQuery()
	if err != nil {
		return c, nil
	}

	d.logger.Debug(string(query))
	return c, nil
}

func (d dbLogger) AfterQuery(c context.Context, q *pg.QueryEvent) error {
	if q.Err != nil && q.Err != pg.ErrNoRows {
		d.logger.Debugw("query failed", "error", q.Err)
	}
	return nil
}

func StartDB(ctx context.Context, config configs.DB, logger *zap.SugaredLogger) (*pg.DB, error) {
	database, err := Connect(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(database, config, logger); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

func Connect(ctx context.Context, config configs.DB, logger *zap.SugaredLogger) (*pg.DB, error) {
	options, err := pg.ParseURL(config.URL)
	if err != nil {
		logger.Errorw("failed to parse db url", "error", err)
		return nil, err
	}

	database := pg.Connect(options)
	database.AddQueryHook(dbLogger{logger})

	if err := database.Ping(ctx); err != nil {
		logger.Errorw("failed to ping db", "error", err)
		database.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return database, nil
}

func Migrate(database *pg.DB, config configs.DB, logger *zap.SugaredLogger) error {
	collection := migrations.NewCollection()

	err := collection.DiscoverSQLMigrations(config.MigrationsDir)
	if err != nil {
		logger.Errorw("failed to discover migrations", "error", err)
		return err
	}
	logger.Info("migrations discovered")

	_, _, err = collection.Run(database, "init")
	if err != nil {
		logger.Errorw("failed to init migrations", "error", err)
		return err
	}
	logger.Info("migrations initialized")

	oldVersion, newVersion, err := collection.Run(database, "up")
	if err != nil {
		logger.Errorw("failed to run migrations", "error", err)
		return err
	}

	if newVersion != oldVersion {
		logger.Infof("migrated from version %d to %d", oldVersion, newVersion)
	} else {
		logger.Infof("version is %d", oldVersion)
	}

	return nil
}
