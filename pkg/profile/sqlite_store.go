// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one row per user with the record stored as JSON.
type SQLiteStore struct {
	engine
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create profile db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	s.bind(s)
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			data_json TEXT NOT NULL DEFAULT '{}',
			updated_at_ms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init profile schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) load(ctx context.Context, userID string) (Record, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data_json FROM profiles WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return decodeRow(userID, raw), true, nil
}

func (s *SQLiteStore) save(ctx context.Context, userID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, data_json, updated_at_ms) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data_json = excluded.data_json, updated_at_ms = excluded.updated_at_ms
	`, userID, string(data), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", userID, err)
	}
	return nil
}

func (s *SQLiteStore) loadAll(ctx context.Context) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, data_json FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	out := map[string]Record{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		out[id] = decodeRow(id, raw)
	}
	return out, rows.Err()
}

// decodeRow reads a malformed row as an empty record, which migration then
// fills with defaults.
func decodeRow(userID, raw string) Record {
	rec := Record{}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		logger.WarnCF("profile", "Malformed profile row, using defaults", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return Record{}
	}
	return rec
}
