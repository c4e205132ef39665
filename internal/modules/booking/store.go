// README: Booking persistence contract shared by the Firestore and in-memory stores.
package booking

import (
	"context"
	"errors"

	"nursecare/internal/types"
)

var (
	ErrNotFound = errors.New("booking not found")
	ErrConflict = errors.New("booking state conflict")
)

// Store persists bookings. UpdateStatus is a compare-and-set on the status:
// it fails with ErrConflict when the stored status is no longer from.
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, patch Patch) (*Booking, error)
	ListByPatient(ctx context.Context, patientID types.ID, status Status) ([]*Booking, error)
	ListByNurse(ctx context.Context, nurseID types.ID, status Status) ([]*Booking, error)
	// Watch streams the booking's current state and every later change until
	// ctx is done. The channel is closed when the stream ends.
	Watch(ctx context.Context, id types.ID) (<-chan *Booking, error)
	// WatchByPatient streams the patient's bookings, newest first, each time
	// the set or one of its members changes.
	WatchByPatient(ctx context.Context, patientID types.ID) (<-chan []*Booking, error)
}
