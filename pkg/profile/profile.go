// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

// Package profile persists per-user coaching profiles.
package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/tone"
)

// Field names a persisted profile attribute.
type Field string

const (
	FieldName          Field = "name"
	FieldLocation      Field = "location"
	FieldExercise      Field = "exercise"
	FieldNotifyTime    Field = "notify_time"
	FieldTone          Field = "tone"
	FieldNotifications Field = "notifications"
	FieldUpdatedAt     Field = "updated_at"
)

// CompletenessFields are the five fields shown in the profile summary, in
// display order.
var CompletenessFields = []Field{FieldName, FieldLocation, FieldExercise, FieldNotifyTime, FieldTone}

// mutableFields are cleared by Reset.
var mutableFields = []Field{FieldName, FieldLocation, FieldExercise, FieldNotifyTime, FieldTone, FieldNotifications}

// Record is the persisted shape of one user. Keys written by other versions
// are kept as-is.
type Record map[string]any

// Profile is the typed view over a Record.
type Profile struct {
	UserID        string
	Name          *string
	Location      *string
	Exercise      *string
	NotifyTime    *string
	Tone          string
	Notifications bool
	UpdatedAt     *string

	// Condition is reported per session and never persisted.
	Condition tone.Condition
}

// DefaultTemplate returns the record every new user starts from.
func DefaultTemplate() Record {
	return Record{
		string(FieldName):          nil,
		string(FieldLocation):      nil,
		string(FieldExercise):      nil,
		string(FieldNotifyTime):    nil,
		string(FieldTone):          string(tone.Default),
		string(FieldNotifications): false,
		string(FieldUpdatedAt):     nil,
	}
}

// Backfill adds every template key missing from record with its default
// value. Existing keys, including explicit nulls, are left untouched. It
// reports whether anything was added.
func Backfill(record, template Record) (Record, bool) {
	if record == nil {
		record = Record{}
	}
	changed := false
	for k, v := range template {
		if _, ok := record[k]; !ok {
			record[k] = v
			changed = true
		}
	}
	return record, changed
}

func (r Record) clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Record) stringField(f Field) *string {
	v, ok := r[string(f)]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	return &s
}

func (r Record) stamp(now time.Time) {
	r[string(FieldUpdatedAt)] = now.UTC().Format(time.RFC3339)
}

// toProfile builds the typed view. With normalizeTone set, an absent or
// unknown tone reads back as the default.
func toProfile(userID string, r Record, normalizeTone bool) *Profile {
	p := &Profile{
		UserID:     userID,
		Name:       r.stringField(FieldName),
		Location:   r.stringField(FieldLocation),
		Exercise:   r.stringField(FieldExercise),
		NotifyTime: r.stringField(FieldNotifyTime),
		UpdatedAt:  r.stringField(FieldUpdatedAt),
	}
	if t := r.stringField(FieldTone); t != nil {
		p.Tone = *t
	}
	if normalizeTone {
		p.Tone = string(tone.Parse(p.Tone))
	}
	if b, ok := r[string(FieldNotifications)].(bool); ok {
		p.Notifications = b
	}
	return p
}

// Value returns the string value of one of the completeness fields, or nil
// when it is unset or blank.
func (p *Profile) Value(f Field) *string {
	var v *string
	switch f {
	case FieldName:
		v = p.Name
	case FieldLocation:
		v = p.Location
	case FieldExercise:
		v = p.Exercise
	case FieldNotifyTime:
		v = p.NotifyTime
	case FieldTone:
		if p.Tone != "" {
			t := p.Tone
			v = &t
		}
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}

// HasLocation reports whether a usable location is stored.
func (p *Profile) HasLocation() bool {
	return p != nil && p.Value(FieldLocation) != nil
}

// ToneValue returns the tone to render with.
func (p *Profile) ToneValue() tone.Tone {
	if p == nil {
		return tone.Default
	}
	return tone.Parse(p.Tone)
}

// FieldUpdate is one field assignment.
type FieldUpdate struct {
	Field Field
	Value any
}

func (u FieldUpdate) validate() error {
	switch u.Field {
	case FieldName, FieldLocation, FieldExercise:
		if u.Value == nil {
			return nil
		}
		if _, ok := u.Value.(string); !ok {
			return fmt.Errorf("field %s expects a string, got %T", u.Field, u.Value)
		}
	case FieldNotifyTime:
		if u.Value == nil {
			return nil
		}
		s, ok := u.Value.(string)
		if !ok {
			return fmt.Errorf("field %s expects a string, got %T", u.Field, u.Value)
		}
		if _, err := time.Parse("15:04", s); err != nil {
			return fmt.Errorf("field %s expects HH:MM, got %q", u.Field, s)
		}
	case FieldTone:
		// Stored as given; unsupported names read back as the default tone.
		if u.Value == nil {
			return nil
		}
		if _, ok := u.Value.(string); !ok {
			return fmt.Errorf("field %s expects a string, got %T", u.Field, u.Value)
		}
	case FieldNotifications:
		if _, ok := u.Value.(bool); !ok {
			return fmt.Errorf("field %s expects a bool, got %T", u.Field, u.Value)
		}
	case FieldUpdatedAt:
		return fmt.Errorf("field %s is set by the store", u.Field)
	default:
		// Fields added to the template later are writable as soon as they
		// have a default.
		if _, ok := DefaultTemplate()[string(u.Field)]; !ok {
			return fmt.Errorf("%w %q", ErrUnknownField, u.Field)
		}
	}
	return nil
}
