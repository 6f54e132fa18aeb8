package profile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dotsetgreg/fitcoach/pkg/tone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fs, err := NewFileStore(filepath.Join(dir, "users.json"))
	require.NoError(t, err)
	sq, err := NewSQLiteStore(filepath.Join(dir, "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		"file":   fs,
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

func TestStore_GetCreatesDefaultIdempotently(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			first, err := s.Get(ctx, "42")
			require.NoError(t, err)
			assert.Equal(t, "42", first.UserID)
			assert.Nil(t, first.Name)
			assert.Nil(t, first.Location)
			assert.Equal(t, "friendly", first.Tone)
			assert.False(t, first.Notifications)

			second, err := s.Get(ctx, "42")
			require.NoError(t, err)
			assert.Equal(t, first, second)

			all, err := s.All(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestStore_UpdateFields(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := s.UpdateFields(ctx, "u1", []FieldUpdate{
				{Field: FieldName, Value: "나연"},
				{Field: FieldLocation, Value: "성남시 수정구"},
				{Field: FieldTone, Value: tone.Coach},
			})
			require.NoError(t, err)
			require.NotNil(t, p.Name)
			assert.Equal(t, "나연", *p.Name)
			assert.Equal(t, "성남시 수정구", *p.Location)
			assert.Equal(t, "coach", p.Tone)
			assert.NotNil(t, p.UpdatedAt)

			p, err = s.Update(ctx, "u1", FieldNotifyTime, "17:00")
			require.NoError(t, err)
			assert.Equal(t, "17:00", *p.NotifyTime)
			assert.Equal(t, "나연", *p.Name)

			got, err := s.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestStore_UpdateRejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Update(ctx, "u1", FieldNotifyTime, "25:00")
	assert.Error(t, err)
	_, err = s.Update(ctx, "u1", FieldTone, 3)
	assert.Error(t, err)
	_, err = s.Update(ctx, "u1", Field("height"), "180")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = s.Update(ctx, "u1", FieldUpdatedAt, "2026-01-01T00:00:00Z")
	assert.Error(t, err)
	_, err = s.Get(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyUserID)

	_, ok := s.Raw("u1")
	assert.False(t, ok, "rejected updates must not create a record")
}

func TestStore_UnsupportedToneIsStoredAndReadsAsDefault(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p, err := s.Update(ctx, "u1", FieldTone, "sarcastic")
	require.NoError(t, err)
	assert.Equal(t, "friendly", p.Tone)
	assert.Equal(t, tone.Friendly, p.ToneValue())

	raw, ok := s.Raw("u1")
	require.True(t, ok)
	assert.Equal(t, "sarcastic", raw["tone"])

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "friendly", got.Tone)
}

func TestFieldUpdate_AcceptsTemplateFields(t *testing.T) {
	for _, f := range []Field{FieldName, FieldLocation, FieldExercise, FieldTone} {
		assert.NoError(t, FieldUpdate{Field: f, Value: "x"}.validate(), f)
	}
	assert.NoError(t, FieldUpdate{Field: FieldNotifications, Value: true}.validate())
	assert.ErrorIs(t, FieldUpdate{Field: "shoe_size", Value: "270"}.validate(), ErrUnknownField)
}

func TestStore_ResetCompleteness(t *testing.T) {
	ctx := context.Background()
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.UpdateFields(ctx, "u1", []FieldUpdate{
				{Field: FieldName, Value: "나연"},
				{Field: FieldLocation, Value: "성남시 수정구"},
				{Field: FieldExercise, Value: "달리기"},
				{Field: FieldNotifyTime, Value: "17:00"},
				{Field: FieldTone, Value: "healing"},
				{Field: FieldNotifications, Value: true},
			})
			require.NoError(t, err)

			reset, err := s.Reset(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "u1", reset.UserID)
			assert.Equal(t, CompletenessFields, Missing(reset))
			assert.False(t, reset.Notifications)

			got, err := s.Get(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "friendly", got.Tone)
			assert.Nil(t, got.Name)
			assert.Nil(t, got.Location)
		})
	}
}

func TestStore_AdditiveMigration(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Seed("old", Record{
		"name":     "민수",
		"location": nil,
		"tone":     "coach",
		"custom":   "kept",
	})

	p, err := s.Get(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "민수", *p.Name)
	assert.Equal(t, "coach", p.Tone)

	raw, ok := s.Raw("old")
	require.True(t, ok)
	assert.Equal(t, "kept", raw["custom"])
	assert.Contains(t, raw, "exercise")
	assert.Contains(t, raw, "notify_time")
	assert.Equal(t, false, raw["notifications"])
	assert.Nil(t, raw["location"])

	_, err = s.Update(ctx, "old", FieldExercise, "요가")
	require.NoError(t, err)
	raw, _ = s.Raw("old")
	assert.Equal(t, "kept", raw["custom"])
	assert.Equal(t, "요가", raw["exercise"])
}

func TestBackfill_LeavesExistingValues(t *testing.T) {
	rec, changed := Backfill(Record{"tone": nil, "name": "a"}, DefaultTemplate())
	assert.True(t, changed)
	assert.Nil(t, rec["tone"])
	assert.Equal(t, "a", rec["name"])
	assert.Contains(t, rec, "location")

	_, changed = Backfill(rec, DefaultTemplate())
	assert.False(t, changed)
}

func TestFileStore_CorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"u1": {"name": "나`), 0o600))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	p, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, p.Name)
	assert.Equal(t, "friendly", p.Tone)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]Record
	require.NoError(t, json.Unmarshal(data, &doc), "store is rewritten as valid JSON")
	assert.Contains(t, doc, "u1")
}

func TestFileStore_WritesAtomicallyWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_, err := s.Update(ctx, id, FieldName, "user-"+id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "users.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 20)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "user-a"))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "users.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), "u1", FieldExercise, "요가")
	require.NoError(t, err)

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	p, err := reopened.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "요가", *p.Exercise)
}

func TestSQLiteStore_MalformedRowReadsAsDefault(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO profiles (user_id, data_json, updated_at_ms) VALUES ('bad', 'not json', 0)`)
	require.NoError(t, err)

	p, err := s.Get(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, "friendly", p.Tone)
	assert.Nil(t, p.Name)
}
