package replay

import "sync"

// DefaultStoreSize bounds how many replays a Store keeps.
const DefaultStoreSize = 100

// Store is an in-memory replay index keyed by match ID. When full, the
// oldest replay is dropped.
type Store struct {
	mu      sync.RWMutex
	limit   int
	order   []string
	replays map[string]*Replay
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultStoreSize
	}
	return &Store{limit: limit, replays: make(map[string]*Replay)}
}

// Put adds or replaces a replay.
func (s *Store) Put(r *Replay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.replays[r.MatchID]; !ok {
		s.order = append(s.order, r.MatchID)
	}
	s.replays[r.MatchID] = r
	for len(s.order) > s.limit {
		delete(s.replays, s.order[0])
		s.order = s.order[1:]
	}
}

func (s *Store) Get(id string) (*Replay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.replays[id]
	return r, ok
}

// List returns summaries, newest first.
func (s *Store) List() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, Summarize(s.replays[s.order[i]]))
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
