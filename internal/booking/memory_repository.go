package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps bookings in process for the memory backend and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*Booking
	events   []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *MemoryRepository) Create(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[b.ID] = b.clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return b.clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, b *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(b); err != nil {
		return err
	}
	b.Version++
	r.bookings[b.ID] = b.clone()
	return nil
}

func (r *MemoryRepository) Supersede(ctx context.Context, old, replacement *Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(old); err != nil {
		return err
	}
	old.Version++
	r.bookings[old.ID] = old.clone()
	r.bookings[replacement.ID] = replacement.clone()
	return nil
}

func (r *MemoryRepository) checkVersion(b *Booking) error {
	stored, ok := r.bookings[b.ID]
	if !ok {
		return ErrBookingNotFound
	}
	if stored.Version != b.Version {
		return ErrConcurrentUpdate
	}
	return nil
}

func (r *MemoryRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var all []Booking
	for _, b := range r.bookings {
		if b.PatientID == patientID {
			all = append(all, *b.clone())
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].StartsAt().After(all[j].StartsAt())
	})

	if offset >= len(all) {
		return []Booking{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *MemoryRepository) FindElapsed(ctx context.Context, cutoff time.Time) ([]Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.Status == StatusBooked && b.StartsAt().Before(cutoff) {
			out = append(out, *b.clone())
		}
	}
	return out, nil
}

func (r *MemoryRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns the recorded event log, oldest first.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EventLog(nil), r.events...)
}
