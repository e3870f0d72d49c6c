package wizard

import (
	"context"
	"sync"
)

// Event describes one mutation of a process record, delivered to watchers.
type Event struct {
	ProcessID string         `json:"processId"`
	Patch     map[string]any `json:"patch"`
	Data      map[string]any `json:"data"`
}

// DraftStore persists in-progress wizard answers so a flow can survive a
// process restart. The in-memory store works without one; attaching an
// adapter is an explicit opt-in.
type DraftStore interface {
	SaveDraft(ctx context.Context, processID string, data map[string]any) error
	LoadDraft(ctx context.Context, processID string) (map[string]any, error)
	DeleteDraft(ctx context.Context, processID string) error
}

// Store is the process data store: one flat accumulated record per
// process id, shared by every step of that process. Access is guarded
// by a mutex so the engine, the HTTP server and watchers can touch it
// from different goroutines; writes are last-write-wins.
type Store struct {
	mu       sync.RWMutex
	data     map[string]map[string]any
	watchers map[string]map[int]chan Event
	nextID   int
}

// NewStore creates an empty process data store.
func NewStore() *Store {
	return &Store{
		data:     make(map[string]map[string]any),
		watchers: make(map[string]map[int]chan Event),
	}
}

// Data returns a copy of the accumulated record for a process.
// Unknown process ids yield an empty non-nil map, never an error, so
// callers can index the result unconditionally.
func (s *Store) Data(processID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.data[processID]))
	for k, v := range s.data[processID] {
		out[k] = v
	}
	return out
}

// SetData merges patch into the process record. The merge is shallow:
// keys absent from patch keep their value, keys present overwrite
// unconditionally, including explicit nil or empty values. There is no
// defensive filtering here; a step that sends an empty field means it.
func (s *Store) SetData(processID string, patch map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.data[processID]
	if !ok {
		record = make(map[string]any, len(patch))
		s.data[processID] = record
	}
	for k, v := range patch {
		record[k] = v
	}

	snapshot := make(map[string]any, len(record))
	for k, v := range record {
		snapshot[k] = v
	}

	// Deliver under the lock so a concurrent cancel cannot close a
	// channel between snapshot and send. Sends are non-blocking, so a
	// slow consumer drops events instead of holding the lock.
	ev := Event{ProcessID: processID, Patch: patch, Data: snapshot}
	for _, ch := range s.watchers[processID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Clear removes the accumulated record for a process.
func (s *Store) Clear(processID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, processID)
}

// Watch subscribes to mutations of a process record. The returned
// cancel function unsubscribes and closes the channel.
func (s *Store) Watch(processID string) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	if s.watchers[processID] == nil {
		s.watchers[processID] = make(map[int]chan Event)
	}
	ch := make(chan Event, 16)
	s.watchers[processID][id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[processID][id]; ok {
			delete(s.watchers[processID], id)
			close(ch)
		}
	}
	return ch, cancel
}
