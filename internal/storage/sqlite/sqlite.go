package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"streammeter/internal/storage"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage implements storage.Storage using SQLite. Sessions and
// the ledger stay in memory; only the publish audit trail is persisted.
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// New creates a new SQLite storage instance
func New(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStorage{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema
func (s *SQLiteStorage) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS publishes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tx_id TEXT NOT NULL,
			published_at DATETIME NOT NULL,
			users INTEGER NOT NULL,
			total_seconds INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_publishes_published_at ON publishes(published_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordPublish inserts one publish audit record
func (s *SQLiteStorage) RecordPublish(ctx context.Context, record *storage.PublishRecord) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO publishes (tx_id, published_at, users, total_seconds) VALUES (?, ?, ?, ?)`,
		record.TxID, record.PublishedAt.UTC(), record.Users, record.TotalSeconds,
	)
	if err != nil {
		return fmt.Errorf("failed to insert publish record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get publish record id: %w", err)
	}
	record.ID = id

	return nil
}

// ListRecentPublishes returns the most recent publish records, newest first
func (s *SQLiteStorage) ListRecentPublishes(ctx context.Context, limit int) ([]*storage.PublishRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tx_id, published_at, users, total_seconds
		 FROM publishes ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query publish records: %w", err)
	}
	defer rows.Close()

	records := make([]*storage.PublishRecord, 0, limit)
	for rows.Next() {
		record := &storage.PublishRecord{}
		if err := rows.Scan(&record.ID, &record.TxID, &record.PublishedAt, &record.Users, &record.TotalSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan publish record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// Close closes the underlying database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
