// Package storage keeps an ephemeral SQLite index of parsed bibliography records.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/matsen/bibdup/internal/reference"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// selectRecordFields contains the standard field list for SELECT queries.
const selectRecordFields = `entry_type, cite_key, doi, line`

// KeyCount is a citation key and the number of indexed records using it.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// IndexInfo describes the last rebuild.
type IndexInfo struct {
	Source    string    `json:"source"`
	IndexedAt time.Time `json:"indexed_at"`
	Records   int       `json:"records"`
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Parsed records, seq preserves source order
		CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY,
			entry_type TEXT NOT NULL,
			cite_key TEXT NOT NULL,
			doi TEXT,
			line INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_records_key ON records(cite_key);
		CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi) WHERE doi IS NOT NULL AND doi != '';

		-- Single-row description of the indexed source
		CREATE TABLE IF NOT EXISTS index_info (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			source TEXT NOT NULL,
			indexed_at INTEGER NOT NULL,
			records INTEGER NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromRecords clears the database and stores records in order.
// source names where the records came from (a file path or "-").
func (d *DB) RebuildFromRecords(source string, records []reference.Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM records"); err != nil {
		return 0, fmt.Errorf("clearing records table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO records (seq, entry_type, cite_key, doi, line)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing records insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(i+1, rec.Type, rec.Key, nullableStringValue(rec.DOI), rec.Line); err != nil {
			return 0, fmt.Errorf("inserting record %s (line %d): %w", rec.Key, rec.Line, err)
		}
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO index_info (id, source, indexed_at, records)
		VALUES (1, ?, ?, ?)
	`, source, time.Now().Unix(), len(records))
	if err != nil {
		return 0, fmt.Errorf("writing index info: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// GetByKey returns every record with the given key, in source order.
func (d *DB) GetByKey(key string) ([]reference.Record, error) {
	rows, err := d.db.Query(`SELECT `+selectRecordFields+` FROM records WHERE cite_key = ? ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("getting records for %s: %w", key, err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FindByDOI returns every record carrying the given DOI, in source order.
// The comparison is exact; DOIs are not normalized.
func (d *DB) FindByDOI(doi string) ([]reference.Record, error) {
	if doi == "" {
		return nil, nil
	}

	rows, err := d.db.Query(`SELECT `+selectRecordFields+` FROM records WHERE doi = ? ORDER BY seq`, doi)
	if err != nil {
		return nil, fmt.Errorf("finding records by doi: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListAll returns all records in source order, optionally limited.
func (d *DB) ListAll(limit int) ([]reference.Record, error) {
	query := `SELECT ` + selectRecordFields + ` FROM records ORDER BY seq`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Count returns the total number of records.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// RepeatedKeys returns keys used by more than one record, ordered by first appearance.
func (d *DB) RepeatedKeys() ([]KeyCount, error) {
	rows, err := d.db.Query(`
		SELECT cite_key, COUNT(*)
		FROM records
		GROUP BY cite_key
		HAVING COUNT(*) > 1
		ORDER BY MIN(seq)
	`)
	if err != nil {
		return nil, fmt.Errorf("querying repeated keys: %w", err)
	}
	defer rows.Close()

	var counts []KeyCount
	for rows.Next() {
		var kc KeyCount
		if err := rows.Scan(&kc.Key, &kc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, kc)
	}
	return counts, rows.Err()
}

// Info returns the description of the last rebuild, or nil if the index is empty.
func (d *DB) Info() (*IndexInfo, error) {
	var info IndexInfo
	var indexedAt int64
	err := d.db.QueryRow(`SELECT source, indexed_at, records FROM index_info WHERE id = 1`).
		Scan(&info.Source, &indexedAt, &info.Records)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index info: %w", err)
	}
	info.IndexedAt = time.Unix(indexedAt, 0)
	return &info, nil
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (reference.Record, error) {
	var rec reference.Record
	var doi sql.NullString
	if err := s.Scan(&rec.Type, &rec.Key, &doi, &rec.Line); err != nil {
		return reference.Record{}, err
	}
	rec.DOI = doi.String
	return rec, nil
}

func scanRecords(rows *sql.Rows) ([]reference.Record, error) {
	var records []reference.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// nullableStringValue returns nil for empty strings so SQLite stores NULL.
func nullableStringValue(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
