package database

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
)

// DB pairs a connection pool with a query builder using the driver's
// placeholder format.
type DB struct {
	*sql.DB
	QueryBuilder squirrel.StatementBuilderType
	Driver       string
}

func Wrap(db *sql.DB, driver string) *DB {
	var format squirrel.PlaceholderFormat = squirrel.Question
	if driver == "postgres" {
		format = squirrel.Dollar
	}

	return &DB{
		DB:           db,
		QueryBuilder: squirrel.StatementBuilder.PlaceholderFormat(format),
		Driver:       driver,
	}
}
