package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AngelCh415/campaign-dashboard/internal/models"
)

// Store serializes state transitions and publishes each result as a whole
// snapshot. Readers never take the write lock.
type Store struct {
	mu   sync.Mutex // serializes transitions
	cur  atomic.Pointer[State]
	subs []func(State)
	now  func() time.Time
}

func NewStore(pageSize int) *Store {
	s := &Store{now: time.Now}
	st := Initial(pageSize)
	s.cur.Store(&st)
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State { return *s.cur.Load() }

// Subscribe registers fn to receive every published state, in order. fn
// runs on the mutating goroutine and must not call back into the Store.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Apply runs one transition atomically and returns the published state.
func (s *Store) Apply(t func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := t(*s.cur.Load())
	next.Version++
	s.cur.Store(&next)
	for _, fn := range s.subs {
		fn(next)
	}
	return next
}

func (s *Store) SetSearchTerm(term string) State {
	return s.Apply(func(st State) State { return st.SetSearchTerm(term) })
}

func (s *Store) ToggleChannel(name string) State {
	return s.Apply(func(st State) State { return st.ToggleChannel(name) })
}

func (s *Store) ClearChannels() State {
	return s.Apply(State.ClearChannels)
}

func (s *Store) SetSortKey(key models.SortKey) State {
	return s.Apply(func(st State) State { return st.SetSortKey(key) })
}

func (s *Store) SetCurrentPage(n int) State {
	return s.Apply(func(st State) State { return st.SetCurrentPage(n) })
}

func (s *Store) ResetFilters() State {
	return s.Apply(State.ResetFilters)
}

func (s *Store) BeginLoad() State {
	return s.Apply(State.BeginLoad)
}

func (s *Store) LoadSucceeded(records []models.Record) State {
	at := s.now()
	return s.Apply(func(st State) State { return st.LoadSucceeded(records, at) })
}

func (s *Store) LoadFailed(msg string) State {
	return s.Apply(func(st State) State { return st.LoadFailed(msg) })
}
