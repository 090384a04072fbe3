package ladder

import (
	"errors"
	"math/rand"
	"sync"
)

var (
	ErrInsufficientRacers = errors.New("need at least 2 racers")
	ErrInvalidMatchIndex  = errors.New("invalid match index")
	ErrInvalidSide        = errors.New("invalid side")
	ErrAlreadyComplete    = errors.New("ladder is already complete")
	ErrNotAllDecided      = errors.New("not all matches have a winner yet")
)

// Match is one head-to-head race. Winner is nil until declared and always
// equals A or B once set. Declaring again overwrites (last click wins).
type Match struct {
	A      *Racer
	B      *Racer
	Winner *Racer
}

// State is a single-elimination ladder for one event. All mutation goes
// through the engine methods, which serialize on the state's own mutex.
type State struct {
	EventName  string
	Round      int
	Matches    []*Match
	Bye        *Racer
	Complete   bool
	Champion   *Racer
	ByeHistory []string

	mutex sync.Mutex
}

// BuildMatches shuffles the racers and pairs them sequentially. With an odd
// count one racer sits out as the bye run: preferred from those whose raw
// token is not in byeHistory, falling back to a uniform pick among all when
// every racer has already had one.
func BuildMatches(racers []*Racer, byeHistory []string) ([]*Match, *Racer) {
	shuffled := make([]*Racer, len(racers))
	copy(shuffled, racers)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var bye *Racer
	if len(shuffled)%2 == 1 {
		had := make(map[string]bool, len(byeHistory))
		for _, raw := range byeHistory {
			had[raw] = true
		}

		var eligible []int
		for i, r := range shuffled {
			if !had[r.Raw] {
				eligible = append(eligible, i)
			}
		}

		byeIndex := rand.Intn(len(shuffled))
		if len(eligible) > 0 {
			byeIndex = eligible[rand.Intn(len(eligible))]
		}

		bye = shuffled[byeIndex]
		shuffled = append(shuffled[:byeIndex], shuffled[byeIndex+1:]...)
	}

	matches := make([]*Match, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		matches = append(matches, &Match{A: shuffled[i], B: shuffled[i+1]})
	}
	return matches, bye
}

// CreateLadder parses the racer tokens and builds round 1.
func CreateLadder(eventName string, racerTokens []string) (*State, error) {
	racers := make([]*Racer, 0, len(racerTokens))
	seen := make(map[string]bool, len(racerTokens))
	for _, tok := range racerTokens {
		r := ParseRacerToken(tok)
		if r.Raw == "" || seen[r.Raw] {
			continue
		}
		seen[r.Raw] = true
		racers = append(racers, r)
	}

	if len(racers) < 2 {
		return nil, ErrInsufficientRacers
	}

	matches, bye := BuildMatches(racers, nil)
	state := &State{
		EventName: eventName,
		Round:     1,
		Matches:   matches,
		Bye:       bye,
	}
	if bye != nil {
		state.ByeHistory = append(state.ByeHistory, bye.Raw)
	}
	return state, nil
}

// DeclareWinner marks one side of a match as the winner and finalizes the
// event immediately if that leaves a single competitor standing.
func (s *State) DeclareWinner(matchIndex int, side string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.Complete {
		return ErrAlreadyComplete
	}
	if matchIndex < 0 || matchIndex >= len(s.Matches) {
		return ErrInvalidMatchIndex
	}

	match := s.Matches[matchIndex]
	switch side {
	case "a":
		match.Winner = match.A
	case "b":
		match.Winner = match.B
	default:
		return ErrInvalidSide
	}

	s.tryFinalize()
	return nil
}

// AdvanceRound collects the round's winners plus the bye racer and builds
// the next round. With a single competitor left it finalizes instead; no
// round is ever created with one racer.
func (s *State) AdvanceRound() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.Complete {
		return ErrAlreadyComplete
	}
	if !s.allDecided() {
		return ErrNotAllDecided
	}

	survivors := s.survivors()
	if len(survivors) == 1 {
		s.Complete = true
		s.Champion = survivors[0]
		return nil
	}

	s.Round++
	matches, bye := BuildMatches(survivors, s.ByeHistory)
	s.Matches = matches
	s.Bye = bye
	if bye != nil {
		s.ByeHistory = append(s.ByeHistory, bye.Raw)
	}
	return nil
}

// AllDecided reports whether every match in the current round has a winner.
func (s *State) AllDecided() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.allDecided()
}

func (s *State) allDecided() bool {
	for _, m := range s.Matches {
		if m.Winner == nil {
			return false
		}
	}
	return true
}

func (s *State) survivors() []*Racer {
	winners := make([]*Racer, 0, len(s.Matches)+1)
	for _, m := range s.Matches {
		if m.Winner != nil {
			winners = append(winners, m.Winner)
		}
	}
	if s.Bye != nil {
		winners = append(winners, s.Bye)
	}
	return winners
}

// tryFinalize closes the event right after the last winner is picked so the
// final does not require an extra advance click. Caller holds the mutex.
func (s *State) tryFinalize() {
	if s.Complete || !s.allDecided() {
		return
	}
	survivors := s.survivors()
	if len(survivors) == 1 {
		s.Complete = true
		s.Champion = survivors[0]
	}
}
