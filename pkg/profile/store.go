// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/tone"
)

// ErrEmptyUserID is returned for operations without a user identity.
var ErrEmptyUserID = errors.New("profile: empty user id")

// ErrUnknownField is returned when an update names a field outside the schema.
var ErrUnknownField = errors.New("profile: unknown field")

// Store is the profile persistence contract. Get never reports "not found":
// unknown users are created with the default record.
type Store interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Update(ctx context.Context, userID string, field Field, value any) (*Profile, error)
	UpdateFields(ctx context.Context, userID string, updates []FieldUpdate) (*Profile, error)
	Reset(ctx context.Context, userID string) (*Profile, error)
	All(ctx context.Context) (map[string]*Profile, error)
	Close() error
}

// backend is the raw record persistence each implementation provides.
type backend interface {
	load(ctx context.Context, userID string) (Record, bool, error)
	save(ctx context.Context, userID string, rec Record) error
	loadAll(ctx context.Context) (map[string]Record, error)
}

// engine implements Store on top of a backend. Read-modify-write cycles are
// serialised by mu.
type engine struct {
	mu  sync.Mutex
	b   backend
	now func() time.Time
}

func (e *engine) bind(b backend) {
	e.b = b
	e.now = time.Now
}

func (e *engine) Get(ctx context.Context, userID string) (*Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, found, err := e.b.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, migrated := Backfill(rec, DefaultTemplate())
	if !found || migrated {
		if err := e.b.save(ctx, userID, rec); err != nil {
			logger.WarnCF("profile", "Failed to persist default profile", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if !found {
			logger.InfoCF("profile", "Created profile", map[string]any{"user_id": userID})
		}
	}
	return toProfile(userID, rec, true), nil
}

func (e *engine) Update(ctx context.Context, userID string, field Field, value any) (*Profile, error) {
	return e.UpdateFields(ctx, userID, []FieldUpdate{{Field: field, Value: value}})
}

// UpdateFields applies all updates in one read-modify-write. Invalid updates
// abort the whole write.
func (e *engine) UpdateFields(ctx context.Context, userID string, updates []FieldUpdate) (*Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	normalized := make([]FieldUpdate, 0, len(updates))
	for _, u := range updates {
		if t, ok := u.Value.(tone.Tone); ok {
			u.Value = string(t)
		}
		if err := u.validate(); err != nil {
			return nil, err
		}
		if s, ok := u.Value.(string); ok && u.Field == FieldTone && !tone.Valid(s) {
			logger.InfoCF("profile", "Unsupported tone stored, renders as default", map[string]any{
				"user_id": userID,
				"tone":    s,
			})
		}
		normalized = append(normalized, u)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, _, err := e.b.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, _ = Backfill(rec, DefaultTemplate())
	for _, u := range normalized {
		rec[string(u.Field)] = u.Value
	}
	rec.stamp(e.now())
	if err := e.b.save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("save profile %s: %w", userID, err)
	}
	return toProfile(userID, rec, true), nil
}

// Reset nulls every mutable field. The returned profile reports all five
// completeness fields as missing; later reads see the default tone.
func (e *engine) Reset(ctx context.Context, userID string) (*Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, _, err := e.b.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, _ = Backfill(rec, DefaultTemplate())
	for _, f := range mutableFields {
		rec[string(f)] = nil
	}
	rec[string(FieldNotifications)] = false
	rec.stamp(e.now())
	if err := e.b.save(ctx, userID, rec); err != nil {
		return nil, fmt.Errorf("reset profile %s: %w", userID, err)
	}
	logger.InfoCF("profile", "Profile reset", map[string]any{"user_id": userID})
	return toProfile(userID, rec, false), nil
}

func (e *engine) All(ctx context.Context) (map[string]*Profile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	recs, err := e.b.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*Profile, len(recs))
	for id, rec := range recs {
		rec, _ = Backfill(rec, DefaultTemplate())
		out[id] = toProfile(id, rec, true)
	}
	return out, nil
}

func checkUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}
	return nil
}
