package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"devdash/internal/adapter/database"
	"devdash/internal/adapter/database/migrations"
	"devdash/pkg/config"
)

const DefaultPath = "devdash.db"

// Open connects to the SQLite file named by cfg.DSN, traced with otelsql,
// and applies the embedded migrations.
func Open(cfg config.DatabaseConfig) (*database.DB, error) {
	dsn := DSN(cfg.DSN)

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("devdash"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	if cfg.SQLLog {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logged := sqldblogger.OpenDriver(dsn, sqlDB.Driver(), zerologadapter.New(logger))
		sqlDB.Close()
		sqlDB = logged
	}

	configurePool(sqlDB, dsn)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}

	if err := migrations.Run(sqlDB, "sqlite"); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return database.Wrap(sqlDB, "sqlite"), nil
}

// DSN fills in the path default and the connection options used for every
// SQLite database.
func DSN(path string) string {
	if path == "" {
		path = DefaultPath
	}

	if strings.Contains(path, "?") {
		return path
	}

	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func configurePool(db *sql.DB, dsn string) {
	// every connection to :memory: is a separate database
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
}
