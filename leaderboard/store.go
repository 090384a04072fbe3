package leaderboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"racemaster-go/utils"
)

// CategoryAll selects both boards for reset.
const CategoryAll = "all"

var ErrUnknownCategory = errors.New("unknown category")

type boardsDoc struct {
	Track  Board `json:"track"`
	Street Board `json:"street"`
}

// Store owns the two ranked boards and flushes them through the document
// store after every mutation.
type Store struct {
	persist utils.Store
	mutex   sync.Mutex
	track   Board
	street  Board
}

// NewStore loads the persisted boards, starting empty when none exist.
func NewStore(persist utils.Store) (*Store, error) {
	s := &Store{persist: persist}

	data, ok, err := persist.Load(utils.DocLeaderboard)
	if err != nil {
		return nil, err
	}
	if ok {
		var doc boardsDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode leaderboard document: %w", err)
		}
		s.track = doc.Track
		s.street = doc.Street
	}
	return s, nil
}

func (s *Store) board(category string) (*Board, error) {
	switch category {
	case utils.CategoryTrack:
		return &s.track, nil
	case utils.CategoryStreet:
		return &s.street, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
}

// flush persists both boards. Caller holds the mutex.
func (s *Store) flush() error {
	doc := boardsDoc{Track: s.track, Street: s.street}
	if doc.Track == nil {
		doc.Track = Board{}
	}
	if doc.Street == nil {
		doc.Street = Board{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard document: %w", err)
	}
	return s.persist.Save(utils.DocLeaderboard, data)
}

// Insert places an entry on its board: any previous entry by the same
// submitter is removed first, the board is re-sorted and trimmed to the top
// ten. Falling outside the cut is not an error; the returned bool reports
// whether the entry survived.
func (s *Store) Insert(category string, entry Entry) (Board, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	board, err := s.board(category)
	if err != nil {
		return nil, false, err
	}

	kept := make(Board, 0, len(*board)+1)
	for _, e := range *board {
		if e.UserID != entry.UserID {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry)
	sortBoard(kept)
	if len(kept) > utils.BoardSize {
		kept = kept[:utils.BoardSize]
	}
	*board = kept

	if err := s.flush(); err != nil {
		return nil, false, err
	}

	made := false
	for _, e := range kept {
		if e.UserID == entry.UserID {
			made = true
			break
		}
	}

	out := make(Board, len(kept))
	copy(out, kept)
	return out, made, nil
}

// Reset clears one board, or both with CategoryAll.
func (s *Store) Reset(category string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch category {
	case CategoryAll:
		s.track = nil
		s.street = nil
	case utils.CategoryTrack:
		s.track = nil
	case utils.CategoryStreet:
		s.street = nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return s.flush()
}

// Boards returns copies of both boards for rendering and role sync.
func (s *Store) Boards() (Board, Board) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	track := make(Board, len(s.track))
	copy(track, s.track)
	street := make(Board, len(s.street))
	copy(street, s.street)
	return track, street
}

// MemberIDs returns the set of submitter IDs currently on either board.
// Free-text entries without a linked user are skipped.
func (s *Store) MemberIDs() map[string]struct{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make(map[string]struct{}, len(s.track)+len(s.street))
	for _, e := range s.track {
		if e.UserID != "" {
			ids[e.UserID] = struct{}{}
		}
	}
	for _, e := range s.street {
		if e.UserID != "" {
			ids[e.UserID] = struct{}{}
		}
	}
	return ids
}
