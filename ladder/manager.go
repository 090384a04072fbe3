package ladder

import "sync"

// Manager tracks active ladders keyed by the ID of the message displaying
// them, so button presses always find the right ladder. Ladders are
// in-memory only and do not survive a restart.
type Manager struct {
	ladders map[string]*State
	mutex   sync.RWMutex
}

// NewManager creates an empty ladder registry.
func NewManager() *Manager {
	return &Manager{ladders: make(map[string]*State)}
}

// Put registers a ladder under its display message ID.
func (m *Manager) Put(messageID string, state *State) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.ladders[messageID] = state
}

// Get looks up the ladder owning a message.
func (m *Manager) Get(messageID string) (*State, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	state, ok := m.ladders[messageID]
	return state, ok
}

// Reset wipes all active ladders.
func (m *Manager) Reset() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	n := len(m.ladders)
	m.ladders = make(map[string]*State)
	return n
}
