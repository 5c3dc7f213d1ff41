package services

import (
	"testing"
	"time"

	"github.com/artello/backend/internal/models"
)

func TestExpiresAtPerUrgency(t *testing.T) {
	cfg := defaultCfg()

	cases := []struct {
		urgency models.TaskUrgency
		minutes int
	}{
		{models.UrgencyCritical, 10},
		{models.UrgencyUrgent, 30},
		{models.UrgencyStandard, 120},
		{models.UrgencyFlexible, 240},
	}
	for _, tc := range cases {
		got := ExpiresAt(&cfg, tc.urgency, 1, noonUTC)
		want := noonUTC.Add(time.Duration(tc.minutes) * time.Minute)
		if !got.Equal(want) {
			t.Errorf("%s: got %v, want %v", tc.urgency, got, want)
		}
	}
}

func TestExpiresAtBroadcastWindow(t *testing.T) {
	cfg := defaultCfg()

	// At level 3 the urgency window is replaced by the broadcast window,
	// whatever the urgency says.
	for _, u := range []models.TaskUrgency{models.UrgencyCritical, models.UrgencyFlexible} {
		got := ExpiresAt(&cfg, u, 3, noonUTC)
		want := noonUTC.Add(time.Duration(cfg.Escalation.Level3BroadcastMinutes) * time.Minute)
		if !got.Equal(want) {
			t.Errorf("level 3 %s: got %v, want %v", u, got, want)
		}
	}

	// Level 2 still follows the urgency.
	got := ExpiresAt(&cfg, models.UrgencyCritical, 2, noonUTC)
	if want := noonUTC.Add(10 * time.Minute); !got.Equal(want) {
		t.Errorf("level 2 critical: got %v, want %v", got, want)
	}
}
