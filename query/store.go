package query

import (
	"context"
	"fmt"
	"time"

	"dataclassification/entity"
)

const (
	TableDatabaseVersion = "database_version"

	// StoreVersion is the schema version written by InitStore.
	StoreVersion = 1
)

const storeSchemaV0 = `
CREATE TABLE IF NOT EXISTS classified_activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    computer_id INTEGER NOT NULL,
    organization_id TEXT,
    machine_name TEXT,
    tcp_address TEXT,
    host_name TEXT,
    user_name TEXT,
    slice_id INTEGER NOT NULL,
    start_time DATETIME NOT NULL,
    date TEXT NOT NULL,
    process_name TEXT,
    domain TEXT,
    url TEXT,
    window_title TEXT,
    activity_time INTEGER NOT NULL,
    is_connect BOOLEAN NOT NULL DEFAULT FALSE,
    category TEXT NOT NULL,
    sub_category TEXT,
    access_type TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_classified_date ON classified_activities(date);

CREATE TABLE IF NOT EXISTS database_version (
    db_version INTEGER DEFAULT 0
);

INSERT INTO database_version VALUES (0);
`

func (db *Database) GetDbVersion() (int, error) {
	var dbVersion int
	query := "SELECT db_version FROM database_version LIMIT 1"
	err := db.Get(&dbVersion, query)
	if err != nil {
		return 0, fmt.Errorf("GetDbVersion: %w", err)
	}
	return dbVersion, nil
}

// InitStore opens (or creates) the SQLite result store at path and brings
// its schema up to StoreVersion.
func InitStore(path string) (*Database, error) {
	db, err := Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	exist, err := db.TableExists(TableDatabaseVersion)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("InitStore: %w", err)
	}
	if !exist {
		if _, err := db.Exec(storeSchemaV0); err != nil {
			db.Close()
			return nil, fmt.Errorf("InitStore: %w", err)
		}
	}

	if err := db.updateStore(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (db *Database) updateStore() error {
	dbVersion, err := db.GetDbVersion()
	if err != nil {
		return fmt.Errorf("updateStore: %w", err)
	}
	if dbVersion >= StoreVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("updateStore: %w", err)
	}
	defer tx.Rollback()

	if dbVersion < 1 {
		stmts := []string{
			`ALTER TABLE classified_activities ADD COLUMN extracted_name TEXT`,
			`CREATE INDEX IF NOT EXISTS idx_classified_category ON classified_activities(category, access_type)`,
			`UPDATE database_version SET db_version=1`,
		}
		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return fmt.Errorf("updateStore version 1: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("updateStore: commit: %w", err)
	}
	return nil
}

// SaveClassified inserts classified records in a single transaction.
func (db *Database) SaveClassified(ctx context.Context, records []entity.ActivityRecord) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("SaveClassified: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
        INSERT INTO classified_activities
        (computer_id, organization_id, machine_name, tcp_address, host_name, user_name,
         slice_id, start_time, date, process_name, domain, url, window_title,
         activity_time, is_connect, category, sub_category, access_type, extracted_name)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("SaveClassified: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var sub any
		if r.Classification.HasSubCategory() {
			sub = r.Classification.SubCategory
		}
		_, err := stmt.ExecContext(ctx,
			r.ComputerID,
			r.OrganizationID,
			r.MachineName,
			r.IPAddress,
			r.HostName,
			r.UserName,
			r.SliceID,
			r.Timestamp.Format(time.RFC3339),
			r.Date(),
			r.ProcessName,
			r.Domain,
			r.URLName,
			r.WindowTitle,
			r.ActivityTimeSeconds,
			r.IsConnect,
			r.Classification.Category,
			sub,
			r.Classification.AccessType,
			entity.ExtractMachineName(r.MachineName),
		)
		if err != nil {
			return fmt.Errorf("SaveClassified: slice %d: %w", r.SliceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveClassified: commit: %w", err)
	}
	return nil
}
