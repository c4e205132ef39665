// README: In-memory booking store for tests and single-process deployments.
package booking

import (
	"context"
	"sort"
	"sync"

	"nursecare/internal/types"
)

// watchBuffer bounds each watcher's backlog. When it is full the oldest
// queued state is dropped, so a slow watcher misses intermediate states but
// always receives the latest one.
const watchBuffer = 16

type MemoryStore struct {
	mu              sync.RWMutex
	bookings        map[types.ID]*Booking
	watchers        map[types.ID]map[chan *Booking]struct{}
	patientWatchers map[types.ID]map[chan []*Booking]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:        make(map[types.ID]*Booking),
		watchers:        make(map[types.ID]map[chan *Booking]struct{}),
		patientWatchers: make(map[types.ID]map[chan []*Booking]struct{}),
	}
}

func (s *MemoryStore) Create(_ context.Context, b *Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bookings[b.ID]; exists {
		return ErrConflict
	}
	s.bookings[b.ID] = clone(b)
	s.notifyPatient(b.PatientID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, patch Patch) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, ErrConflict
	}
	patch.apply(b, to)
	for ch := range s.watchers[id] {
		offer(ch, clone(b))
	}
	s.notifyPatient(b.PatientID)
	return clone(b), nil
}

// notifyPatient pushes the patient's current list to its watchers. Callers
// hold s.mu.
func (s *MemoryStore) notifyPatient(patientID types.ID) {
	if len(s.patientWatchers[patientID]) == 0 {
		return
	}
	list := s.listLocked(func(b *Booking) bool { return b.PatientID == patientID }, "")
	for ch := range s.patientWatchers[patientID] {
		offer(ch, cloneAll(list))
	}
}

// offer sends v without blocking, making room by dropping the oldest queued
// value. Senders hold the store lock, so nothing else fills ch in between.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *MemoryStore) ListByPatient(_ context.Context, patientID types.ID, status Status) ([]*Booking, error) {
	return s.list(func(b *Booking) bool { return b.PatientID == patientID }, status), nil
}

func (s *MemoryStore) ListByNurse(_ context.Context, nurseID types.ID, status Status) ([]*Booking, error) {
	return s.list(func(b *Booking) bool { return b.NurseID != nil && *b.NurseID == nurseID }, status), nil
}

// list returns matches newest first, like the Firestore queries.
func (s *MemoryStore) list(match func(*Booking) bool, status Status) []*Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(match, status)
}

func (s *MemoryStore) listLocked(match func(*Booking) bool, status Status) []*Booking {
	var out []*Booking
	for _, b := range s.bookings {
		if !match(b) || (status != "" && b.Status != status) {
			continue
		}
		out = append(out, clone(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryStore) Watch(ctx context.Context, id types.ID) (<-chan *Booking, error) {
	s.mu.Lock()
	b, ok := s.bookings[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	ch := make(chan *Booking, watchBuffer)
	ch <- clone(b)
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[chan *Booking]struct{})
	}
	s.watchers[id][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers[id], ch)
		if len(s.watchers[id]) == 0 {
			delete(s.watchers, id)
		}
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

// WatchByPatient streams the patient's bookings, newest first, on every
// create or status change.
func (s *MemoryStore) WatchByPatient(ctx context.Context, patientID types.ID) (<-chan []*Booking, error) {
	s.mu.Lock()
	ch := make(chan []*Booking, watchBuffer)
	ch <- s.listLocked(func(b *Booking) bool { return b.PatientID == patientID }, "")
	if s.patientWatchers[patientID] == nil {
		s.patientWatchers[patientID] = make(map[chan []*Booking]struct{})
	}
	s.patientWatchers[patientID][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.patientWatchers[patientID], ch)
		if len(s.patientWatchers[patientID]) == 0 {
			delete(s.patientWatchers, patientID)
		}
		close(ch)
		s.mu.Unlock()
	}()
	return ch, nil
}

func cloneAll(list []*Booking) []*Booking {
	out := make([]*Booking, len(list))
	for i, b := range list {
		out[i] = clone(b)
	}
	return out
}

func clone(b *Booking) *Booking {
	cp := *b
	if b.NurseID != nil {
		id := *b.NurseID
		cp.NurseID = &id
	}
	if b.EquipmentNeeded != nil {
		cp.EquipmentNeeded = append([]string(nil), b.EquipmentNeeded...)
	}
	if b.Pricing.Breakdown.SurgeLabel != nil {
		label := *b.Pricing.Breakdown.SurgeLabel
		cp.Pricing.Breakdown.SurgeLabel = &label
	}
	return &cp
}
