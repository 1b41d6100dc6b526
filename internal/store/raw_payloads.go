package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Payload sources.
const (
	SourceUpload = "upload"
	SourceIngest = "ingest"
)

// RawPayload is an uploaded log file as received, before parsing.
type RawPayload struct {
	ID                int64
	FetchedAt         time.Time
	Source            string
	Filename          sql.NullString
	PayloadCompressed []byte
	PayloadHash       string
	SizeBytes         int64
}

// StoreRawPayload stores a compressed copy of a log file. Identical payloads
// are stored once; the ID of the existing row is returned for duplicates.
func (s *Store) StoreRawPayload(source, filename string, payload []byte) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)
	hashHex := hex.EncodeToString(hash[:])

	var filenameNull sql.NullString
	if filename != "" {
		filenameNull = sql.NullString{String: filename, Valid: true}
	}

	result, err := s.db.Exec(`
		INSERT INTO raw_payloads (fetched_at, source, filename, payload_compressed, payload_hash, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(payload_hash) DO NOTHING
	`, time.Now().UTC(), source, filenameNull, buf.Bytes(), hashHex, len(payload))
	if err != nil {
		return 0, fmt.Errorf("insert raw payload: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		existing, err := s.GetRawPayloadByHash(hashHex)
		if err != nil {
			return 0, fmt.Errorf("lookup duplicate payload: %w", err)
		}
		if existing == nil {
			return 0, fmt.Errorf("duplicate payload %s vanished", hashHex)
		}
		return existing.ID, nil
	}
	return result.LastInsertId()
}

// GetRawPayload retrieves and decompresses a stored payload by ID.
func (s *Store) GetRawPayload(id int64) ([]byte, error) {
	var compressed []byte
	err := s.db.QueryRow(`SELECT payload_compressed FROM raw_payloads WHERE id = ?`, id).
		Scan(&compressed)
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// GetRawPayloadByHash retrieves a payload by the hex sha256 of its
// uncompressed content.
func (s *Store) GetRawPayloadByHash(hash string) (*RawPayload, error) {
	row := s.db.QueryRow(`
		SELECT id, fetched_at, source, filename, payload_compressed, payload_hash, size_bytes
		FROM raw_payloads WHERE payload_hash = ?
	`, hash)

	var p RawPayload
	err := row.Scan(&p.ID, &p.FetchedAt, &p.Source, &p.Filename, &p.PayloadCompressed, &p.PayloadHash, &p.SizeBytes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RawPayloadStats contains storage statistics for raw payloads.
type RawPayloadStats struct {
	TotalCount      int              `json:"total_count"`
	CompressedBytes int64            `json:"compressed_bytes"`
	OriginalBytes   int64            `json:"original_bytes"`
	CountBySource   map[string]int   `json:"count_by_source"`
	SizeBySource    map[string]int64 `json:"size_by_source"`
}

// GetRawPayloadStats returns storage statistics for raw payloads.
func (s *Store) GetRawPayloadStats() (*RawPayloadStats, error) {
	stats := &RawPayloadStats{
		CountBySource: make(map[string]int),
		SizeBySource:  make(map[string]int64),
	}

	row := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(payload_compressed)), 0), COALESCE(SUM(size_bytes), 0)
		FROM raw_payloads
	`)
	if err := row.Scan(&stats.TotalCount, &stats.CompressedBytes, &stats.OriginalBytes); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT source, COUNT(*), SUM(LENGTH(payload_compressed))
		FROM raw_payloads
		GROUP BY source
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var source string
		var count int
		var size int64
		if err := rows.Scan(&source, &count, &size); err != nil {
			return nil, err
		}
		stats.CountBySource[source] = count
		stats.SizeBySource[source] = size
	}

	return stats, rows.Err()
}

// CleanupOrphanRawPayloads deletes payloads no longer referenced by any
// upload. Returns the number of deleted records.
func (s *Store) CleanupOrphanRawPayloads() (int64, error) {
	result, err := s.db.Exec(`
		DELETE FROM raw_payloads
		WHERE id NOT IN (SELECT raw_payload_id FROM uploads WHERE raw_payload_id IS NOT NULL)
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
