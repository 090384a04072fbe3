package leaderboard

import (
	"sort"
	"time"
)

// Entry is one approved timeslip on a board.
type Entry struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	ET         float64   `json:"et"`
	ETDisplay  string    `json:"et_display"`
	MPH        float64   `json:"mph"`
	MPHDisplay string    `json:"mph_display"`
	Proof      string    `json:"proof,omitempty"`
	ApprovedAt time.Time `json:"approved_at"`
	ApprovedBy string    `json:"approved_by"`
}

// Board is a ranked category, best ET first.
type Board []Entry

// sortBoard orders ascending by ET, ties broken by earlier approval, then
// submitter ID so the ordering is deterministic.
func sortBoard(b Board) {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].ET != b[j].ET {
			return b[i].ET < b[j].ET
		}
		if !b[i].ApprovedAt.Equal(b[j].ApprovedAt) {
			return b[i].ApprovedAt.Before(b[j].ApprovedAt)
		}
		return b[i].UserID < b[j].UserID
	})
}
