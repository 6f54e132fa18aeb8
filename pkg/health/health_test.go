package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alertRecorder struct {
	texts []string
	err   error
}

func (a *alertRecorder) notify(_ context.Context, text string) error {
	a.texts = append(a.texts, text)
	return a.err
}

func seedUsers(t *testing.T, store *profile.MemoryStore, stamps map[string]string) {
	t.Helper()
	for id, ts := range stamps {
		rec := profile.DefaultTemplate()
		if ts != "" {
			rec["updated_at"] = ts
		}
		store.Seed(id, rec)
	}
}

func TestMonitor_Stats(t *testing.T) {
	store := profile.NewMemoryStore()
	seedUsers(t, store, map[string]string{
		"a": "2026-10-16T09:00:00Z",
		"b": "2026-10-18T01:00:00Z",
		"c": "2026-10-18T03:00:00Z",
		"d": "2026-10-17T12:00:00Z",
		"e": "",
	})

	m := NewMonitor(store, nil)
	m.now = func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) }

	stats, err := m.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Registered)
	assert.Equal(t, 2, stats.TodayActive)
	assert.Equal(t, []string{"d", "b", "c"}, stats.Recent)
}

func TestMonitor_CheckUsersAlertsOnChange(t *testing.T) {
	ctx := context.Background()
	store := profile.NewMemoryStore()
	rec := &alertRecorder{}
	m := NewMonitor(store, rec.notify)

	require.NoError(t, m.CheckUsers(ctx))
	assert.Empty(t, rec.texts, "first check only records the baseline")

	_, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	_, err = store.Update(ctx, "u2", profile.FieldName, "민수")
	require.NoError(t, err)

	require.NoError(t, m.CheckUsers(ctx))
	require.Len(t, rec.texts, 1)
	assert.Contains(t, rec.texts[0], "새로운 유저 2명 추가됨 (총 2명)")
	assert.Contains(t, rec.texts[0], "최근 가입자: u2")

	require.NoError(t, m.CheckUsers(ctx))
	assert.Len(t, rec.texts, 1, "unchanged count sends nothing")
	assert.False(t, m.LastCheck().IsZero())
}

func TestMonitor_AlertFailureIsReported(t *testing.T) {
	store := profile.NewMemoryStore()
	rec := &alertRecorder{err: errors.New("discord down")}
	m := NewMonitor(store, rec.notify)
	_, err := m.Prime(context.Background())
	require.NoError(t, err)

	_, _ = store.Get(context.Background(), "u1")
	assert.Error(t, m.CheckUsers(context.Background()))
	assert.NoError(t, NewMonitor(store, nil).Alert(context.Background(), "ignored"))
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return rr.Code, body
}

func TestServer_Endpoints(t *testing.T) {
	ctx := context.Background()
	store := profile.NewMemoryStore()
	rec := &alertRecorder{}
	m := NewMonitor(store, rec.notify)
	_, err := m.Prime(ctx)
	require.NoError(t, err)

	srv := NewServer(Options{
		Addr:    "127.0.0.1:0",
		Version: "1.2.3",
		Secrets: map[string]bool{"discord_token": true, "weather_api_key": false},
		Extra:   func() map[string]any { return map[string]any{"processed": 7} },
	}, m)

	code, body := getJSON(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])

	srv.SetBotRunning(true)
	code, _ = getJSON(t, srv, "/ready")
	assert.Equal(t, http.StatusOK, code)

	_, err = store.Update(ctx, "u1", profile.FieldName, "나연")
	require.NoError(t, err)

	code, body = getJSON(t, srv, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	require.Len(t, rec.texts, 1)

	_, body = getJSON(t, srv, "/")
	assert.Equal(t, "active", body["bot_status"])
	assert.Equal(t, float64(1), body["registered_users"])
	assert.Equal(t, []any{"u1"}, body["recent_users"])

	_, body = getJSON(t, srv, "/info")
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, map[string]any{"discord_token": true, "weather_api_key": false}, body["env_loaded"])

	_, body = getJSON(t, srv, "/status")
	assert.Equal(t, true, body["running"])
	assert.Equal(t, float64(7), body["processed"])
	assert.NotEmpty(t, body["last_check"])
}

func TestServer_StopBeforeStart(t *testing.T) {
	srv := NewServer(Options{Addr: "127.0.0.1:0"}, NewMonitor(profile.NewMemoryStore(), nil))
	assert.NoError(t, srv.Stop(context.Background()))
}
