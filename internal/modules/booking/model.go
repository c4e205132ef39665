// README: Booking aggregate and status definitions.
package booking

import (
	"time"

	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusSearching  Status = "searching"
	StatusNurseFound Status = "nurse_found"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Type string

const (
	TypeInstant   Type = "instant"
	TypeBidding   Type = "bidding"
	TypeScheduled Type = "scheduled"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInstant, TypeBidding, TypeScheduled:
		return true
	}
	return false
}

const (
	CancelledByPatient = "patient"
	CancelledByNurse   = "nurse"
)

// Location is where the visit happens. Geohash is precision 5.
type Location struct {
	Lat     float64 `json:"lat" firestore:"lat"`
	Lng     float64 `json:"lng" firestore:"lng"`
	Address string  `json:"address" firestore:"address"`
	Geohash string  `json:"geohash" firestore:"geohash"`
}

// Booking is stored as one document; Pricing is the breakdown exactly as it
// was quoted or validated.
type Booking struct {
	ID              types.ID               `json:"id" firestore:"id"`
	PatientID       types.ID               `json:"patientId" firestore:"patientId"`
	NurseID         *types.ID              `json:"nurseId" firestore:"nurseId"`
	Status          Status                 `json:"status" firestore:"status"`
	Type            Type                   `json:"type" firestore:"type"`
	ServiceType     string                 `json:"serviceType" firestore:"serviceType"`
	DurationHours   float64                `json:"duration" firestore:"duration"`
	EquipmentNeeded []string               `json:"equipmentNeeded" firestore:"equipmentNeeded"`
	Notes           string                 `json:"notes" firestore:"notes"`
	Location        Location               `json:"location" firestore:"location"`
	ScheduledTime   *time.Time             `json:"scheduledTime" firestore:"scheduledTime"`
	IsEmergency     bool                   `json:"isEmergency" firestore:"isEmergency"`
	Urgency         string                 `json:"urgency" firestore:"urgency"`
	Pricing         pricing.PriceBreakdown `json:"pricing" firestore:"pricing"`
	QuoteID         types.ID               `json:"quoteId,omitempty" firestore:"quoteId,omitempty"`
	CreatedAt       time.Time              `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt" firestore:"updatedAt"`
	AcceptedAt      *time.Time             `json:"acceptedAt" firestore:"acceptedAt"`
	StartedAt       *time.Time             `json:"startedAt" firestore:"startedAt"`
	CompletedAt     *time.Time             `json:"completedAt" firestore:"completedAt"`
	CancelledAt     *time.Time             `json:"cancelledAt" firestore:"cancelledAt"`
	CancelledBy     string                 `json:"cancelledBy,omitempty" firestore:"cancelledBy,omitempty"`
}

// VisibleTo reports whether uid is the patient or the assigned nurse.
func (b *Booking) VisibleTo(uid types.ID) bool {
	if uid == "" {
		return false
	}
	return b.PatientID == uid || (b.NurseID != nil && *b.NurseID == uid)
}

func (b *Booking) Terminal() bool {
	_, ok := AllowedTransitions[b.Status]
	return !ok
}

// AllowedTransitions represents the booking state flow as code. Completed
// and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusSearching, StatusAccepted, StatusCancelled},
	StatusSearching:  {StatusNurseFound, StatusCancelled},
	StatusNurseFound: {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Patch carries the fields a status change may set besides the status.
type Patch struct {
	NurseID     *types.ID
	CancelledBy string
	At          time.Time
}

// apply moves b to status to, stamping the matching timestamp.
func (p Patch) apply(b *Booking, to Status) {
	at := p.At
	b.Status = to
	b.UpdatedAt = at
	if p.NurseID != nil {
		id := *p.NurseID
		b.NurseID = &id
	}
	switch to {
	case StatusAccepted:
		b.AcceptedAt = &at
	case StatusInProgress:
		b.StartedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	case StatusCancelled:
		b.CancelledAt = &at
		b.CancelledBy = p.CancelledBy
	}
}
