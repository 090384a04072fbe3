package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"racemaster-go/utils"
)

var (
	ErrInvalidValue     = errors.New("ET and MPH must be positive numbers")
	ErrProofRequired    = errors.New("a timeslip photo or video is required")
	ErrDuplicatePending = errors.New("a submission for this category is already awaiting review")
	ErrSlipNotFound     = errors.New("slip not found")
)

// CooldownActiveError carries the remaining wait so the refusal can tell the
// submitter when they can try again.
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("cooldown active, %s remaining", e.Remaining.Round(time.Minute))
}

// Decision values for Resolve.
const (
	DecisionApprove = "approve"
	DecisionDeny    = "deny"
)

// PendingSlip is a submitted timeslip awaiting a moderator decision. It is
// destroyed on approval or denial; at most one exists per (submitter,
// category).
type PendingSlip struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Category    string    `json:"category"`
	ET          float64   `json:"et"`
	ETDisplay   string    `json:"et_display"`
	MPH         float64   `json:"mph"`
	MPHDisplay  string    `json:"mph_display"`
	Proof       string    `json:"proof,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type pendingDoc struct {
	Pending map[string]PendingSlip `json:"pending"`
}

// NameResolver looks up a submitter's display name. Best-effort: failures
// fall back to the mention form.
type NameResolver func(userID string) (string, error)

// Workflow owns the pending slip queue and drives approvals into the board
// store and cooldown tracker.
type Workflow struct {
	persist      utils.Store
	boards       *Store
	cooldowns    *Tracker
	resolveName  NameResolver
	requireProof bool
	now          func() time.Time

	mutex   sync.Mutex
	pending map[string]PendingSlip
}

// NewWorkflow loads persisted pending slips.
func NewWorkflow(persist utils.Store, boards *Store, cooldowns *Tracker, resolveName NameResolver, requireProof bool) (*Workflow, error) {
	w := &Workflow{
		persist:      persist,
		boards:       boards,
		cooldowns:    cooldowns,
		resolveName:  resolveName,
		requireProof: requireProof,
		now:          time.Now,
		pending:      make(map[string]PendingSlip),
	}

	data, ok, err := persist.Load(utils.DocPending)
	if err != nil {
		return nil, err
	}
	if ok {
		var doc pendingDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode pending document: %w", err)
		}
		if doc.Pending != nil {
			w.pending = doc.Pending
		}
	}
	return w, nil
}

// flush persists the pending queue. Caller holds the mutex.
func (w *Workflow) flush() error {
	data, err := json.Marshal(pendingDoc{Pending: w.pending})
	if err != nil {
		return fmt.Errorf("failed to encode pending document: %w", err)
	}
	return w.persist.Save(utils.DocPending, data)
}

// parseValue normalizes a user-typed number to a positive finite float and
// its two-decimal display form.
func parseValue(raw string) (float64, string, error) {
	trimmed := strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, "", ErrInvalidValue
	}
	return v, strconv.FormatFloat(v, 'f', 2, 64), nil
}

// Submit validates a timeslip and queues it for moderation.
func (w *Workflow) Submit(userID, category, etRaw, mphRaw, proof string) (*PendingSlip, error) {
	et, etDisplay, err := parseValue(etRaw)
	if err != nil {
		return nil, err
	}
	mph, mphDisplay, err := parseValue(mphRaw)
	if err != nil {
		return nil, err
	}
	if w.requireProof && proof == "" {
		return nil, ErrProofRequired
	}

	now := w.now()
	if ok, remaining := w.cooldowns.CheckAllowed(userID, category, now); !ok {
		return nil, &CooldownActiveError{Remaining: remaining}
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	for _, slip := range w.pending {
		if slip.UserID == userID && slip.Category == category {
			return nil, ErrDuplicatePending
		}
	}

	slip := PendingSlip{
		ID:          uuid.NewString(),
		UserID:      userID,
		Category:    category,
		ET:          et,
		ETDisplay:   etDisplay,
		MPH:         mph,
		MPHDisplay:  mphDisplay,
		Proof:       proof,
		SubmittedAt: now,
	}
	w.pending[slip.ID] = slip

	if err := w.flush(); err != nil {
		delete(w.pending, slip.ID)
		return nil, err
	}
	return &slip, nil
}

// Resolve applies a moderator decision. Unknown or already-resolved slip IDs
// return ErrSlipNotFound, which makes double-clicked decisions a safe no-op.
// On approval the returned entry is nil when the slip did not make the cut.
// A persistence failure anywhere on the approve path puts the slip back in
// the queue so the moderator can retry.
func (w *Workflow) Resolve(slipID, decision, moderatorID string) (*Entry, error) {
	w.mutex.Lock()
	slip, ok := w.pending[slipID]
	if !ok {
		w.mutex.Unlock()
		return nil, ErrSlipNotFound
	}
	delete(w.pending, slipID)
	if err := w.flush(); err != nil {
		w.pending[slipID] = slip
		w.mutex.Unlock()
		return nil, err
	}
	w.mutex.Unlock()

	if decision != DecisionApprove {
		return nil, nil
	}

	now := w.now()

	// Name resolution is the one external lookup on this path; its failure
	// must never block the approval.
	name := "<@" + slip.UserID + ">"
	if resolved, err := w.resolveName(slip.UserID); err != nil {
		log.Printf("name resolution failed for %s: %v", slip.UserID, err)
		utils.CollaboratorFailures.WithLabelValues("name_resolution").Inc()
	} else if resolved != "" {
		name = resolved
	}

	entry := Entry{
		UserID:     slip.UserID,
		Name:       name,
		ET:         slip.ET,
		ETDisplay:  slip.ETDisplay,
		MPH:        slip.MPH,
		MPHDisplay: slip.MPHDisplay,
		Proof:      slip.Proof,
		ApprovedAt: now,
		ApprovedBy: moderatorID,
	}

	_, made, err := w.boards.Insert(slip.Category, entry)
	if err != nil {
		w.requeue(slip)
		return nil, err
	}
	if err := w.cooldowns.RecordApproval(slip.UserID, slip.Category, now); err != nil {
		w.requeue(slip)
		return nil, err
	}

	if !made {
		return nil, nil
	}
	return &entry, nil
}

// requeue puts a slip back after a failed approval so the decision can be
// retried instead of vanishing.
func (w *Workflow) requeue(slip PendingSlip) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	w.pending[slip.ID] = slip
	if err := w.flush(); err != nil {
		log.Printf("failed to requeue slip %s: %v", slip.ID, err)
	}
}

// PendingCount returns the number of slips awaiting review.
func (w *Workflow) PendingCount() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return len(w.pending)
}

// Peek returns a pending slip without resolving it.
func (w *Workflow) Peek(slipID string) (PendingSlip, bool) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	slip, ok := w.pending[slipID]
	return slip, ok
}
