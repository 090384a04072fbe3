package leaderboard

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"racemaster-go/utils"
)

type cooldownDoc struct {
	// "<userID>:<category>" -> last approval, unix millis
	Cooldowns map[string]int64 `json:"cooldowns"`
}

// Tracker rate-limits submissions: one approval per user per category per
// 24 hours. Denials do not start a cooldown.
type Tracker struct {
	persist utils.Store
	mutex   sync.Mutex
	records map[string]int64
}

// NewTracker loads persisted cooldown records.
func NewTracker(persist utils.Store) (*Tracker, error) {
	t := &Tracker{persist: persist, records: make(map[string]int64)}

	data, ok, err := persist.Load(utils.DocCooldowns)
	if err != nil {
		return nil, err
	}
	if ok {
		var doc cooldownDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode cooldown document: %w", err)
		}
		if doc.Cooldowns != nil {
			t.records = doc.Cooldowns
		}
	}
	return t, nil
}

func cooldownKey(userID, category string) string {
	return userID + ":" + category
}

// flush persists the records. Caller holds the mutex.
func (t *Tracker) flush() error {
	data, err := json.Marshal(cooldownDoc{Cooldowns: t.records})
	if err != nil {
		return fmt.Errorf("failed to encode cooldown document: %w", err)
	}
	return t.persist.Save(utils.DocCooldowns, data)
}

// CheckAllowed reports whether a new submission is allowed and, when it is
// not, how long remains on the cooldown.
func (t *Tracker) CheckAllowed(userID, category string, now time.Time) (bool, time.Duration) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	last, ok := t.records[cooldownKey(userID, category)]
	if !ok {
		return true, 0
	}
	until := time.UnixMilli(last).Add(utils.SubmitCooldown)
	if !now.Before(until) {
		return true, 0
	}
	return false, until.Sub(now)
}

// RecordApproval upserts the approval timestamp for (user, category).
func (t *Tracker) RecordApproval(userID, category string, now time.Time) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.records[cooldownKey(userID, category)] = now.UnixMilli()
	return t.flush()
}

// Clear wipes all cooldowns so the whole cohort can resubmit, used on full
// leaderboard reset.
func (t *Tracker) Clear() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.records = make(map[string]int64)
	return t.flush()
}
