package query

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Database wraps a sqlx handle. It is used both for the monitoring database
// activities are read from and for the local result store.
type Database struct {
	*sqlx.DB
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{DB: db}
}

// Open connects with one of the registered drivers: sqlserver, pgx, sqlite
// (pure Go) or sqlite3 (cgo).
func Open(driver, dsn string) (*Database, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("Open %s: %w", driver, err)
	}

	// every connection to ":memory:" is a separate database
	if isSQLite(driver) && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	return NewDatabase(db), nil
}

func isSQLite(driver string) bool {
	return driver == "sqlite" || driver == "sqlite3"
}

// TableExists reports whether a SQLite table is present.
func (db *Database) TableExists(tableName string) (bool, error) {
	query := `
		SELECT count(name)
		FROM sqlite_master
		WHERE type='table' AND name=?
	`

	var count int
	err := db.QueryRow(query, tableName).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
