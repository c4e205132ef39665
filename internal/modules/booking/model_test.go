package booking

import (
	"testing"
	"time"

	"nursecare/internal/types"
)

// TestCanTransition verifies the state machine transition table.
func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		// forward flow
		{StatusPending, StatusSearching, true},
		{StatusSearching, StatusNurseFound, true},
		{StatusNurseFound, StatusAccepted, true},
		{StatusAccepted, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		// instant accept straight from pending
		{StatusPending, StatusAccepted, true},
		// cancels before the visit starts
		{StatusPending, StatusCancelled, true},
		{StatusSearching, StatusCancelled, true},
		{StatusNurseFound, StatusCancelled, true},
		{StatusAccepted, StatusCancelled, true},
		// a visit in progress can only complete
		{StatusInProgress, StatusCancelled, false},
		// terminal states
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusSearching, false},
		// skipping states
		{StatusPending, StatusInProgress, false},
		{StatusSearching, StatusAccepted, false},
		{StatusPending, StatusCompleted, false},
	}
	for _, tc := range cases {
		got := CanTransition(tc.from, tc.to)
		if got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPatchApplyStampsStatusTime(t *testing.T) {
	at := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	nurse := types.ID("n1")

	b := &Booking{Status: StatusPending}
	Patch{At: at, NurseID: &nurse}.apply(b, StatusAccepted)
	if b.Status != StatusAccepted || b.AcceptedAt == nil || !b.AcceptedAt.Equal(at) {
		t.Fatalf("accepted not stamped: %+v", b)
	}
	if b.NurseID == nil || *b.NurseID != nurse {
		t.Fatalf("nurse not assigned: %v", b.NurseID)
	}

	Patch{At: at.Add(time.Hour), CancelledBy: CancelledByPatient}.apply(b, StatusCancelled)
	if b.CancelledAt == nil || b.CancelledBy != CancelledByPatient {
		t.Fatalf("cancel not stamped: %+v", b)
	}
	if !b.UpdatedAt.Equal(at.Add(time.Hour)) {
		t.Errorf("updatedAt = %v", b.UpdatedAt)
	}
	if !b.Terminal() {
		t.Errorf("cancelled booking should be terminal")
	}
}

func TestVisibleTo(t *testing.T) {
	nurse := types.ID("n1")
	b := &Booking{PatientID: "p1", NurseID: &nurse}
	for uid, want := range map[types.ID]bool{"p1": true, "n1": true, "n2": false, "": false} {
		if got := b.VisibleTo(uid); got != want {
			t.Errorf("VisibleTo(%q) = %v, want %v", uid, got, want)
		}
	}
}

func TestTypeValid(t *testing.T) {
	for _, typ := range []Type{TypeInstant, TypeBidding, TypeScheduled} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if Type("auction").Valid() {
		t.Errorf("auction should not be valid")
	}
}
