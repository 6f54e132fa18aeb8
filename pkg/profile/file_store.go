// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
)

// FileStore keeps every profile in one JSON document keyed by user id.
// Each write rewrites the whole document through a temp file and rename.
type FileStore struct {
	engine
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("profile: empty store path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create profile store dir: %w", err)
	}
	s := &FileStore{path: path}
	s.bind(s)
	return s, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) load(_ context.Context, userID string) (Record, bool, error) {
	doc := s.readDocument()
	rec, ok := doc[userID]
	if !ok || rec == nil {
		return Record{}, false, nil
	}
	return rec, true, nil
}

func (s *FileStore) loadAll(_ context.Context) (map[string]Record, error) {
	return s.readDocument(), nil
}

func (s *FileStore) save(_ context.Context, userID string, rec Record) error {
	doc := s.readDocument()
	doc[userID] = rec
	return s.writeDocument(doc)
}

// readDocument never fails: a missing or unreadable file is an empty store.
func (s *FileStore) readDocument() map[string]Record {
	doc := map[string]Record{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.WarnCF("profile", "Profile store unreadable, treating as empty", map[string]any{
				"path":  s.path,
				"error": err.Error(),
			})
		}
		return doc
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.WarnCF("profile", "Profile store corrupt, treating as empty", map[string]any{
			"path":  s.path,
			"error": err.Error(),
		})
		return map[string]Record{}
	}
	return doc
}

func (s *FileStore) writeDocument(doc map[string]Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode profile store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replace profile store: %w", err)
	}
	return nil
}
