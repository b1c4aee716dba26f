package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"devdash/internal/adapter/database"
	"devdash/internal/adapter/database/migrations"
	"devdash/pkg/config"
)

// Open connects through the pgx stdlib driver so repositories share the
// database/sql code path with SQLite.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	sqlDB, err := otelsql.Open("pgx", cfg.DSN,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName("devdash"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	if cfg.SQLLog {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logged := sqldblogger.OpenDriver(cfg.DSN, sqlDB.Driver(), zerologadapter.New(logger))
		sqlDB.Close()
		sqlDB = logged
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if err := migrations.Run(sqlDB, "postgres"); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return database.Wrap(sqlDB, "postgres"), nil
}
