// FitCoach - weather-aware exercise coaching bot
// License: MIT
//
// Copyright (c) 2026 FitCoach contributors

package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dotsetgreg/fitcoach/pkg/logger"
	"github.com/dotsetgreg/fitcoach/pkg/profile"
	"github.com/samber/lo"
)

const alertTitle = "[FitCoach 알림]"

// Notifier delivers an administrator alert.
type Notifier func(ctx context.Context, text string) error

// UserStats is the telemetry view of the profile store.
type UserStats struct {
	Registered  int      `json:"registered_users"`
	TodayActive int      `json:"today_active_users"`
	Recent      []string `json:"recent_users"`
}

// Monitor tracks the registered user count and alerts when it changes.
type Monitor struct {
	store  profile.Store
	notify Notifier
	now    func() time.Time

	mu        sync.Mutex
	lastCount int
	primed    bool
	lastCheck time.Time
}

func NewMonitor(store profile.Store, notify Notifier) *Monitor {
	return &Monitor{store: store, notify: notify, now: time.Now}
}

// Stats reads the current user statistics. Users are ordered by last
// update; today-active counts profiles updated on the local calendar day.
func (m *Monitor) Stats(ctx context.Context) (UserStats, error) {
	all, err := m.store.All(ctx)
	if err != nil {
		return UserStats{}, fmt.Errorf("load profiles: %w", err)
	}

	today := m.now().Format("2006-01-02")
	profiles := lo.Values(all)
	sort.Slice(profiles, func(i, j int) bool {
		ti, tj := updatedAt(profiles[i]), updatedAt(profiles[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return profiles[i].UserID < profiles[j].UserID
	})

	stats := UserStats{
		Registered: len(profiles),
		TodayActive: lo.CountBy(profiles, func(p *profile.Profile) bool {
			t := updatedAt(p)
			return !t.IsZero() && t.In(m.now().Location()).Format("2006-01-02") == today
		}),
		Recent: lo.Map(lo.Subset(profiles, -3, 3), func(p *profile.Profile, _ int) string {
			return p.UserID
		}),
	}
	return stats, nil
}

// Prime records the current count as the baseline without alerting.
func (m *Monitor) Prime(ctx context.Context) (UserStats, error) {
	stats, err := m.Stats(ctx)
	if err != nil {
		return UserStats{}, err
	}
	m.mu.Lock()
	m.lastCount = stats.Registered
	m.primed = true
	m.lastCheck = m.now()
	m.mu.Unlock()
	return stats, nil
}

// CheckUsers compares the user count with the previous check and sends an
// alert when it changed. The first check only records the baseline.
func (m *Monitor) CheckUsers(ctx context.Context) error {
	stats, err := m.Stats(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	prev, primed := m.lastCount, m.primed
	m.lastCount = stats.Registered
	m.primed = true
	m.lastCheck = m.now()
	m.mu.Unlock()

	if !primed || prev == stats.Registered {
		return nil
	}

	diff := stats.Registered - prev
	var text string
	if diff > 0 {
		latest := "알 수 없음"
		if n := len(stats.Recent); n > 0 {
			latest = stats.Recent[n-1]
		}
		msg := fmt.Sprintf("🟢 새로운 유저 %d명 추가됨 (총 %d명)", diff, stats.Registered)
		logger.InfoCF("health", msg, map[string]any{"registered": stats.Registered})
		text = fmt.Sprintf("%s\n%s\n최근 가입자: %s", alertTitle, msg, latest)
	} else {
		msg := fmt.Sprintf("🔴 유저 %d명 감소 (현재 %d명)", -diff, stats.Registered)
		logger.WarnCF("health", msg, map[string]any{"registered": stats.Registered})
		text = fmt.Sprintf("%s\n%s", alertTitle, msg)
	}
	return m.Alert(ctx, text)
}

// Alert sends text to the administrator. Without a notifier it is a no-op.
func (m *Monitor) Alert(ctx context.Context, text string) error {
	if m.notify == nil {
		return nil
	}
	if err := m.notify(ctx, text); err != nil {
		logger.WarnCF("health", "Admin alert failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("admin alert: %w", err)
	}
	return nil
}

// LastCheck is when the user count was last read.
func (m *Monitor) LastCheck() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastCheck
}

func updatedAt(p *profile.Profile) time.Time {
	if p == nil || p.UpdatedAt == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, *p.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
