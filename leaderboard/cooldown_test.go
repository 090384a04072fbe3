package leaderboard

import (
	"testing"
	"time"

	"racemaster-go/utils"
)

func TestCooldownWindow(t *testing.T) {
	tracker, err := NewTracker(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if ok, _ := tracker.CheckAllowed("u1", utils.CategoryTrack, now); !ok {
		t.Fatal("fresh user must be allowed")
	}

	if err := tracker.RecordApproval("u1", utils.CategoryTrack, now); err != nil {
		t.Fatalf("RecordApproval failed: %v", err)
	}

	ok, remaining := tracker.CheckAllowed("u1", utils.CategoryTrack, now.Add(time.Hour))
	if ok {
		t.Error("submission within 24h must be rejected")
	}
	if remaining != 23*time.Hour {
		t.Errorf("expected 23h remaining, got %v", remaining)
	}

	// Categories cool down independently.
	if ok, _ := tracker.CheckAllowed("u1", utils.CategoryStreet, now.Add(time.Hour)); !ok {
		t.Error("street must not be gated by a track approval")
	}

	if ok, _ := tracker.CheckAllowed("u1", utils.CategoryTrack, now.Add(24*time.Hour-time.Second)); ok {
		t.Error("one second before expiry must still be rejected")
	}
	if ok, _ := tracker.CheckAllowed("u1", utils.CategoryTrack, now.Add(24*time.Hour)); !ok {
		t.Error("exactly 24h after approval must be allowed")
	}
}

func TestCooldownClear(t *testing.T) {
	tracker, err := NewTracker(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}

	now := time.Now()
	tracker.RecordApproval("u1", utils.CategoryTrack, now)
	tracker.RecordApproval("u2", utils.CategoryStreet, now)

	if err := tracker.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if ok, _ := tracker.CheckAllowed("u1", utils.CategoryTrack, now); !ok {
		t.Error("clear must lift all cooldowns")
	}
	if ok, _ := tracker.CheckAllowed("u2", utils.CategoryStreet, now); !ok {
		t.Error("clear must lift all cooldowns")
	}
}

func TestCooldownPersistenceRoundTrip(t *testing.T) {
	persist := utils.NewMemoryStore()

	tracker, err := NewTracker(persist)
	if err != nil {
		t.Fatalf("NewTracker failed: %v", err)
	}
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tracker.RecordApproval("u1", utils.CategoryTrack, now)

	reloaded, err := NewTracker(persist)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if ok, _ := reloaded.CheckAllowed("u1", utils.CategoryTrack, now.Add(time.Minute)); ok {
		t.Error("cooldown must survive a reload")
	}
}
