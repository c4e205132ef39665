// README: Booking store backed by a Firestore collection, one document per booking.
package booking

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"nursecare/internal/types"
)

const bookingsCollection = "bookings"

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) doc(id types.ID) *firestore.DocumentRef {
	return s.client.Collection(bookingsCollection).Doc(string(id))
}

func (s *FirestoreStore) Create(ctx context.Context, b *Booking) error {
	if _, err := s.doc(b.ID).Create(ctx, b); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return ErrConflict
		}
		return fmt.Errorf("creating booking %s: %w", b.ID, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading booking %s: %w", id, err)
	}
	return decode(snap)
}

// UpdateStatus runs the compare-and-set inside a transaction so concurrent
// accepts resolve to one winner.
func (s *FirestoreStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, patch Patch) (*Booking, error) {
	ref := s.doc(id)
	var updated *Booking
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		b, err := decode(snap)
		if err != nil {
			return err
		}
		if b.Status != from {
			return ErrConflict
		}
		patch.apply(b, to)
		updated = b
		return tx.Update(ref, statusUpdates(b, to))
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("updating booking %s to %s: %w", id, to, err)
	}
	return updated, nil
}

// statusUpdates lists the fields Patch.apply touched for status to.
func statusUpdates(b *Booking, to Status) []firestore.Update {
	updates := []firestore.Update{
		{Path: "status", Value: b.Status},
		{Path: "updatedAt", Value: b.UpdatedAt},
		{Path: "nurseId", Value: b.NurseID},
	}
	switch to {
	case StatusAccepted:
		updates = append(updates, firestore.Update{Path: "acceptedAt", Value: b.AcceptedAt})
	case StatusInProgress:
		updates = append(updates, firestore.Update{Path: "startedAt", Value: b.StartedAt})
	case StatusCompleted:
		updates = append(updates, firestore.Update{Path: "completedAt", Value: b.CompletedAt})
	case StatusCancelled:
		updates = append(updates,
			firestore.Update{Path: "cancelledAt", Value: b.CancelledAt},
			firestore.Update{Path: "cancelledBy", Value: b.CancelledBy},
		)
	}
	return updates
}

func (s *FirestoreStore) ListByPatient(ctx context.Context, patientID types.ID, st Status) ([]*Booking, error) {
	return s.list(ctx, "patientId", patientID, st)
}

func (s *FirestoreStore) ListByNurse(ctx context.Context, nurseID types.ID, st Status) ([]*Booking, error) {
	return s.list(ctx, "nurseId", nurseID, st)
}

func (s *FirestoreStore) query(field string, id types.ID, st Status) firestore.Query {
	q := s.client.Collection(bookingsCollection).
		Where(field, "==", string(id)).
		OrderBy("createdAt", firestore.Desc)
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	return q
}

func (s *FirestoreStore) list(ctx context.Context, field string, id types.ID, st Status) ([]*Booking, error) {
	iter := s.query(field, id, st).Documents(ctx)
	defer iter.Stop()

	var out []*Booking
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing bookings by %s: %w", field, err)
		}
		b, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Watch listens to the booking document. Snapshots of a deleted document
// are skipped.
func (s *FirestoreStore) Watch(ctx context.Context, id types.ID) (<-chan *Booking, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	it := s.doc(id).Snapshots(ctx)
	ch := make(chan *Booking, watchBuffer)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				return
			}
			if !snap.Exists() {
				continue
			}
			b, err := decode(snap)
			if err != nil {
				continue
			}
			select {
			case ch <- b:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// WatchByPatient listens to the ListByPatient query. Each query snapshot is
// sent as the full list; documents that fail to decode are skipped.
func (s *FirestoreStore) WatchByPatient(ctx context.Context, patientID types.ID) (<-chan []*Booking, error) {
	it := s.query("patientId", patientID, "").Snapshots(ctx)
	ch := make(chan []*Booking, watchBuffer)
	go func() {
		defer close(ch)
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				return
			}
			list := make([]*Booking, 0, len(docs))
			for _, snap := range docs {
				if b, err := decode(snap); err == nil {
					list = append(list, b)
				}
			}
			select {
			case ch <- list:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func decode(snap *firestore.DocumentSnapshot) (*Booking, error) {
	var b Booking
	if err := snap.DataTo(&b); err != nil {
		return nil, fmt.Errorf("decoding booking %s: %w", snap.Ref.ID, err)
	}
	return &b, nil
}
