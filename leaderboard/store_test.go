package leaderboard

import (
	"fmt"
	"testing"
	"time"

	"racemaster-go/utils"
)

func testEntry(userID string, et float64, approvedAt time.Time) Entry {
	return Entry{
		UserID:     userID,
		Name:       "Racer " + userID,
		ET:         et,
		ETDisplay:  fmt.Sprintf("%.2f", et),
		MPH:        130,
		MPHDisplay: "130.00",
		ApprovedAt: approvedAt,
		ApprovedBy: "mod",
	}
}

func TestInsertSortsAscendingByET(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	for i, et := range []float64{10.5, 9.8, 11.2, 10.1} {
		if _, _, err := store.Insert(utils.CategoryTrack, testEntry(fmt.Sprintf("u%d", i), et, now)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	track, _ := store.Boards()
	if len(track) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(track))
	}
	for i := 1; i < len(track); i++ {
		if track[i].ET < track[i-1].ET {
			t.Errorf("board not sorted at %d: %.2f after %.2f", i, track[i].ET, track[i-1].ET)
		}
	}
}

func TestInsertTieBreaks(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	early := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	store.Insert(utils.CategoryTrack, testEntry("later", 9.90, late))
	store.Insert(utils.CategoryTrack, testEntry("earlier", 9.90, early))

	track, _ := store.Boards()
	if track[0].UserID != "earlier" {
		t.Errorf("earlier approval should rank first on equal ET, got %s", track[0].UserID)
	}

	// Same ET and timestamp: submitter id decides, deterministically.
	store2, _ := NewStore(utils.NewMemoryStore())
	store2.Insert(utils.CategoryTrack, testEntry("bbb", 9.90, early))
	store2.Insert(utils.CategoryTrack, testEntry("aaa", 9.90, early))
	board, _ := store2.Boards()
	if board[0].UserID != "aaa" {
		t.Errorf("expected submitter id tiebreak, got %s first", board[0].UserID)
	}
}

func TestInsertOneEntryPerUser(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	store.Insert(utils.CategoryStreet, testEntry("u1", 10.0, now))
	board, made, err := store.Insert(utils.CategoryStreet, testEntry("u1", 9.5, now.Add(time.Minute)))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if !made {
		t.Error("entry should have made the board")
	}
	if len(board) != 1 {
		t.Fatalf("expected 1 entry after re-submission, got %d", len(board))
	}
	if board[0].ET != 9.5 {
		t.Errorf("expected the newer slip, got ET %.2f", board[0].ET)
	}
}

func TestInsertTrimsToTen(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	for i := 0; i < 12; i++ {
		et := 9.0 + float64(i)*0.1
		if _, _, err := store.Insert(utils.CategoryTrack, testEntry(fmt.Sprintf("u%d", i), et, now)); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	track, _ := store.Boards()
	if len(track) != utils.BoardSize {
		t.Fatalf("expected board trimmed to %d, got %d", utils.BoardSize, len(track))
	}

	// A slip slower than the whole board is silently dropped.
	board, made, err := store.Insert(utils.CategoryTrack, testEntry("slow", 99.0, now))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if made {
		t.Error("slow slip should not make the cut")
	}
	if len(board) != utils.BoardSize {
		t.Errorf("board grew past %d", utils.BoardSize)
	}
}

func TestBoardsAreIndependent(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	store.Insert(utils.CategoryTrack, testEntry("u1", 9.0, now))
	store.Insert(utils.CategoryStreet, testEntry("u1", 10.0, now))

	track, street := store.Boards()
	if len(track) != 1 || len(street) != 1 {
		t.Errorf("expected one entry per board, got track=%d street=%d", len(track), len(street))
	}
}

func TestResetSingleAndAll(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	store.Insert(utils.CategoryTrack, testEntry("u1", 9.0, now))
	store.Insert(utils.CategoryStreet, testEntry("u2", 10.0, now))

	if err := store.Reset(utils.CategoryTrack); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	track, street := store.Boards()
	if len(track) != 0 || len(street) != 1 {
		t.Errorf("single reset wrong: track=%d street=%d", len(track), len(street))
	}

	if err := store.Reset(CategoryAll); err != nil {
		t.Fatalf("reset all failed: %v", err)
	}
	track, street = store.Boards()
	if len(track) != 0 || len(street) != 0 {
		t.Error("full reset should empty both boards")
	}

	if err := store.Reset("bogus"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestStorePersistenceRoundTrip(t *testing.T) {
	persist := utils.NewMemoryStore()

	store, err := NewStore(persist)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	now := time.Date(2026, 8, 30, 20, 0, 0, 0, time.UTC)
	store.Insert(utils.CategoryTrack, testEntry("u1", 9.87, now))

	reloaded, err := NewStore(persist)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	track, _ := reloaded.Boards()
	if len(track) != 1 {
		t.Fatalf("expected entry to survive reload, got %d entries", len(track))
	}
	if track[0].UserID != "u1" || track[0].ETDisplay != "9.87" {
		t.Errorf("reloaded entry mangled: %+v", track[0])
	}
}

func TestMemberIDsSpansBoards(t *testing.T) {
	store, err := NewStore(utils.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	now := time.Now()
	store.Insert(utils.CategoryTrack, testEntry("u1", 9.0, now))
	store.Insert(utils.CategoryStreet, testEntry("u2", 10.0, now))
	store.Insert(utils.CategoryStreet, testEntry("u1", 10.5, now))

	ids := store.MemberIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct members, got %d", len(ids))
	}
	for _, id := range []string{"u1", "u2"} {
		if _, ok := ids[id]; !ok {
			t.Errorf("missing member %s", id)
		}
	}
}
