package executor

import (
	"sort"
	"sync"
	"time"
)

// Phase is the lifecycle position of a tab.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Response is the normalized result of a send that got a reply, successful
// or not.
type Response struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Data       any               `json:"data"`
	Headers    map[string]string `json:"headers"`
	ElapsedMs  int64             `json:"elapsedMs"`
	SizeBytes  int               `json:"sizeBytes"`
}

// TabState is what a tab shows. The zero value is an idle tab.
type TabState struct {
	Phase      Phase
	Generation uint64
	StartedAt  time.Time
	Response   *Response
	Err        error
}

func (s TabState) IsLoading() bool {
	return s.Phase == PhaseSending
}

type EventKind int

const (
	EventStart EventKind = iota
	EventSucceed
	EventFail
)

// Event is an input to Reduce.
type Event struct {
	Kind       EventKind
	Generation uint64
	At         time.Time
	Response   *Response
	Err        error
}

// Reduce returns the state after e. A start always wins: it clears the
// previous response and error. A settlement only applies while the tab is
// sending the same generation.
func Reduce(s TabState, e Event) TabState {
	switch e.Kind {
	case EventStart:
		return TabState{
			Phase:      PhaseSending,
			Generation: e.Generation,
			StartedAt:  e.At,
		}
	case EventSucceed, EventFail:
		if s.Phase != PhaseSending || s.Generation != e.Generation {
			return s
		}
		next := s
		next.Phase = PhaseSucceeded
		if e.Kind == EventFail {
			next.Phase = PhaseFailed
		}
		next.Response = e.Response
		next.Err = e.Err
		return next
	default:
		return s
	}
}

// Store holds the state of every open tab.
type Store struct {
	mu   sync.Mutex
	tabs map[string]TabState
	// generations are unique across tabs so a reopened tab never matches a
	// settlement from its previous life.
	lastGeneration uint64
}

func NewStore() *Store {
	return &Store{tabs: make(map[string]TabState)}
}

// Begin starts a send on tabID and returns its generation.
func (s *Store) Begin(tabID string, at time.Time) (uint64, TabState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGeneration++
	next := Reduce(s.tabs[tabID], Event{Kind: EventStart, Generation: s.lastGeneration, At: at})
	s.tabs[tabID] = next
	return s.lastGeneration, next
}

// Settle applies a settlement. The boolean reports whether it was current;
// a stale settlement leaves the tab untouched.
func (s *Store) Settle(tabID string, e Event) (TabState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.tabs[tabID]
	if !ok {
		return TabState{}, false
	}
	next := Reduce(prev, e)
	current := prev.Phase == PhaseSending && prev.Generation == e.Generation
	s.tabs[tabID] = next
	return next, current
}

// Get returns the state of tabID; unknown tabs are idle.
func (s *Store) Get(tabID string) TabState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[tabID]
}

// Close forgets a tab. Sends still in flight for it settle as stale.
func (s *Store) Close(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tabs, tabID)
}

// Tabs lists open tab ids, sorted.
func (s *Store) Tabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.tabs))
	for id := range s.tabs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
