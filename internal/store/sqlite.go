package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/airsense/internal/models"
)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger.With("component", "store")}
}

// Open opens the SQLite database at path, creating its directory if needed.
// Writes are serialized through a single connection.
func Open(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return db, nil
}

// SaveUpload stores an upload and its readings atomically.
func (s *Store) SaveUpload(u models.Upload, ds models.Dataset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO uploads (id, created_at, filename, temperature, humidity, advisory, reading_count, charts_json, raw_payload_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.CreatedAt.UTC(), u.Filename, u.Temperature, u.Humidity, u.Advisory, len(ds), u.Charts, u.RawPayloadID)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO readings (upload_id, seq, altitude, location, windspeed, temperature, timestamp, time, co, h2, dust)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare reading insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range ds {
		if _, err := stmt.Exec(u.ID, i, r.Altitude, r.Location, r.Windspeed, r.Temperature, r.Timestamp, r.Time, r.CO, r.H2, r.Dust); err != nil {
			return fmt.Errorf("insert reading %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upload: %w", err)
	}
	return nil
}

const uploadColumns = `id, created_at, filename, temperature, humidity, advisory, reading_count, charts_json, raw_payload_id`

func scanUpload(row interface{ Scan(...any) error }) (*models.Upload, error) {
	var u models.Upload
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Filename, &u.Temperature, &u.Humidity, &u.Advisory, &u.ReadingCount, &u.Charts, &u.RawPayloadID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUpload returns the upload with the given ID, or nil if there is none.
func (s *Store) GetUpload(id string) (*models.Upload, error) {
	return scanUpload(s.db.QueryRow(`SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, id))
}

// GetLatestUpload returns the most recently created upload, or nil if the
// store is empty.
func (s *Store) GetLatestUpload() (*models.Upload, error) {
	return scanUpload(s.db.QueryRow(`SELECT ` + uploadColumns + ` FROM uploads ORDER BY created_at DESC, rowid DESC LIMIT 1`))
}

// ListUploads returns the most recent uploads, newest first. Chart data is
// not loaded.
func (s *Store) ListUploads(limit int) ([]models.Upload, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, filename, temperature, humidity, advisory, reading_count, raw_payload_id
		FROM uploads
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.CreatedAt, &u.Filename, &u.Temperature, &u.Humidity, &u.Advisory, &u.ReadingCount, &u.RawPayloadID); err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

// GetReadings returns the dataset stored for an upload in file order.
func (s *Store) GetReadings(uploadID string) (models.Dataset, error) {
	rows, err := s.db.Query(`
		SELECT altitude, location, windspeed, temperature, timestamp, time, co, h2, dust
		FROM readings
		WHERE upload_id = ?
		ORDER BY seq ASC
	`, uploadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := models.Dataset{}
	for rows.Next() {
		var r models.Reading
		if err := rows.Scan(&r.Altitude, &r.Location, &r.Windspeed, &r.Temperature, &r.Timestamp, &r.Time, &r.CO, &r.H2, &r.Dust); err != nil {
			return nil, err
		}
		ds = append(ds, r)
	}
	return ds, rows.Err()
}

// DeleteUploadsBefore removes uploads created before cutoff along with their
// readings. Returns the number of uploads deleted.
func (s *Store) DeleteUploadsBefore(cutoff time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cutoff = cutoff.UTC()
	if _, err := tx.Exec(`
		DELETE FROM readings
		WHERE upload_id IN (SELECT id FROM uploads WHERE created_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM uploads WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete uploads: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete: %w", err)
	}
	return n, nil
}
