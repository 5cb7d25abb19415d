package status

import (
	"testing"
	"time"

	"trackd.sh/internal/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func timeAgo(d time.Duration) *time.Time {
	ts := now.Add(-d)
	return &ts
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		current  models.AssetStatus
		battery  *int
		lastSeen *time.Time
		expected models.AssetStatus
	}{
		{
			name:     "no signals and no history is offline",
			expected: models.StatusOffline,
		},
		{
			name:     "no signals keeps current status",
			current:  models.StatusOnline,
			expected: models.StatusOnline,
		},
		{
			name:     "battery at threshold is low-battery",
			battery:  intPtr(20),
			lastSeen: timeAgo(time.Minute),
			expected: models.StatusLowBattery,
		},
		{
			name:     "battery below threshold is low-battery",
			battery:  intPtr(0),
			expected: models.StatusLowBattery,
		},
		{
			name:     "low battery wins over fresh heartbeat",
			battery:  intPtr(10),
			lastSeen: timeAgo(time.Second),
			expected: models.StatusLowBattery,
		},
		{
			name:     "low battery wins over staleness",
			battery:  intPtr(5),
			lastSeen: timeAgo(time.Hour),
			expected: models.StatusLowBattery,
		},
		{
			name:     "recovered battery falls through to staleness",
			current:  models.StatusLowBattery,
			battery:  intPtr(80),
			lastSeen: timeAgo(time.Hour),
			expected: models.StatusOffline,
		},
		{
			name:     "recovered battery with fresh heartbeat is online",
			current:  models.StatusLowBattery,
			battery:  intPtr(80),
			lastSeen: timeAgo(time.Minute),
			expected: models.StatusOnline,
		},
		{
			name:     "seen exactly at the staleness bound is still online",
			lastSeen: timeAgo(10 * time.Minute),
			expected: models.StatusOnline,
		},
		{
			name:     "seen just past the staleness bound is offline",
			lastSeen: timeAgo(10*time.Minute + time.Second),
			expected: models.StatusOffline,
		},
		{
			name:     "fresh heartbeat is online",
			lastSeen: timeAgo(time.Minute),
			expected: models.StatusOnline,
		},
		{
			name:     "nil battery never forces low-battery",
			current:  models.StatusOnline,
			lastSeen: timeAgo(time.Minute),
			expected: models.StatusOnline,
		},
		{
			name:     "healthy battery with no heartbeat history is online",
			battery:  intPtr(80),
			expected: models.StatusOnline,
		},
		{
			name:     "stale heartbeat overrides current online",
			current:  models.StatusOnline,
			lastSeen: timeAgo(time.Hour),
			expected: models.StatusOffline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.current, tt.battery, tt.lastSeen, now)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDeriveIdempotent(t *testing.T) {
	battery := intPtr(55)
	lastSeen := timeAgo(3 * time.Minute)

	first := Derive(models.StatusOffline, battery, lastSeen, now)
	second := Derive(first, battery, lastSeen, now)

	if first != second {
		t.Errorf("expected derivation to be idempotent, got %s then %s", first, second)
	}
}

func TestDeriveBatteryDominatesEverywhere(t *testing.T) {
	// Any battery level at or below the threshold yields low-battery no
	// matter how fresh or stale the heartbeat is.
	for level := 0; level <= LowBatteryThreshold; level++ {
		for _, seen := range []*time.Time{nil, timeAgo(time.Second), timeAgo(24 * time.Hour)} {
			if got := Derive(models.StatusOnline, intPtr(level), seen, now); got != models.StatusLowBattery {
				t.Fatalf("battery %d: expected low-battery, got %s", level, got)
			}
		}
	}
	for level := LowBatteryThreshold + 1; level <= 100; level++ {
		if got := Derive("", intPtr(level), timeAgo(time.Minute), now); got != models.StatusOnline {
			t.Fatalf("battery %d: expected online, got %s", level, got)
		}
	}
}
