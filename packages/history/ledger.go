package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

const (
	// DefaultCapacity is the number of records a Ledger keeps
	DefaultCapacity = 50
	// StoreKey is the key under which the ledger is persisted
	StoreKey = "history"
)

// Store is the persistence boundary the ledger writes through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Ledger is a bounded, newest-first sequence of records. It is safe for
// concurrent use.
type Ledger struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
	store    Store
}

type Option func(*Ledger)

// WithCapacity overrides DefaultCapacity. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithStore saves the ledger after every mutation.
func WithStore(s Store) Option {
	return func(l *Ledger) {
		l.store = s
	}
}

func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the in-memory records with the persisted ones, keeping at
// most Capacity of the newest.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	data, ok, err := l.store.Get(ctx, StoreKey)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if !ok {
		return nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("decoding history: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(records) > l.capacity {
		records = records[:l.capacity]
	}
	l.records = records
	return nil
}

// Append adds r as the newest record, evicting the oldest beyond capacity.
// The in-memory append always happens; the error only reports a failed save.
func (l *Ledger) Append(ctx context.Context, r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.records) + 1
	if n > l.capacity {
		n = l.capacity
	}
	next := make([]Record, 0, n)
	next = append(next, r.Clone())
	next = append(next, l.records[:n-1]...)
	l.records = next

	return l.persist(ctx)
}

// Clear removes every record.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	return l.persist(ctx)
}

// Records returns deep copies of the records, newest first.
func (l *Ledger) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		out[i] = r.Clone()
	}
	return out
}

// Latest returns the newest record.
func (l *Ledger) Latest() (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.records) == 0 {
		return Record{}, false
	}
	return l.records[0].Clone(), true
}

// Find returns the record with the given ID.
func (l *Ledger) Find(id string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Record{}, false
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Ledger) Capacity() int {
	return l.capacity
}

// persist must be called with l.mu held.
func (l *Ledger) persist(ctx context.Context) error {
	if l.store == nil {
		return nil
	}
	records := l.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := l.store.Put(ctx, StoreKey, data); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}
