// README: Booking service: prices and creates bookings, applies status transitions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"nursecare/internal/geo"
	"nursecare/internal/metrics"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrBadRequest   = errors.New("bad request")
	ErrForbidden    = errors.New("not a participant of this booking")
)

// DefaultBookingHours is the visit length when the patient does not pick one.
const DefaultBookingHours = 2.0

// QuoteTTL bounds how old a submitted quote for an instant booking may be.
const QuoteTTL = 15 * time.Minute

// Estimator is satisfied by *location.Service.
type Estimator interface {
	Estimate(ctx context.Context, patient, nurse geo.Point, serviceType string) location.Estimate
}

type Service struct {
	store     Store
	pricing   *pricing.Service
	estimator Estimator
	log       *zap.Logger
	now       func() time.Time
}

func NewService(store Store, pricingSvc *pricing.Service, estimator Estimator, log *zap.Logger) *Service {
	if pricingSvc == nil {
		pricingSvc = pricing.NewService(nil, nil, log)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		pricing:   pricingSvc,
		estimator: estimator,
		log:       log.Named("booking"),
		now:       time.Now,
	}
}

type CreateCommand struct {
	PatientID       types.ID
	Type            Type
	ServiceType     string
	DurationHours   float64
	EquipmentNeeded []string
	Notes           string
	Location        geo.Point
	Address         string
	// NurseLocation, when known, is what the distance is estimated from.
	// Otherwise DistanceKm is used as given.
	NurseLocation   *geo.Point
	DistanceKm      float64
	NurseExperience pricing.ExperienceInput
	ScheduledTime   *time.Time
	IsEmergency     bool
	Urgency         string
	// Pricing is a breakdown the client already showed the patient. It is
	// re-validated instead of re-quoted.
	Pricing *pricing.PriceBreakdown
}

type StatusCommand struct {
	BookingID types.ID
	To        Status
	ActorID   types.ID
	// NurseID is the nurse the patient picked; only read for nurse_found.
	NurseID types.ID
}

type CancelCommand struct {
	BookingID types.ID
	ActorID   types.ID
	By        string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if cmd.PatientID == "" || strings.TrimSpace(cmd.ServiceType) == "" {
		return nil, ErrBadRequest
	}
	if err := cmd.Location.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if cmd.Type == "" {
		cmd.Type = TypeInstant
	}
	if !cmd.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown booking type %q", ErrBadRequest, cmd.Type)
	}
	if cmd.Type == TypeScheduled && cmd.ScheduledTime == nil {
		return nil, fmt.Errorf("%w: scheduled booking without a time", ErrBadRequest)
	}
	if cmd.DurationHours <= 0 {
		cmd.DurationHours = DefaultBookingHours
	}
	if cmd.Urgency == "" {
		cmd.Urgency = "normal"
	}

	pb, err := s.price(ctx, cmd)
	if err != nil {
		return nil, err
	}
	quote := s.pricing.Record(ctx, pb, cmd.PatientID)

	now := s.now().UTC()
	b := &Booking{
		ID:              types.NewID(),
		PatientID:       cmd.PatientID,
		Status:          StatusPending,
		Type:            cmd.Type,
		ServiceType:     cmd.ServiceType,
		DurationHours:   cmd.DurationHours,
		EquipmentNeeded: cmd.EquipmentNeeded,
		Notes:           cmd.Notes,
		Location: Location{
			Lat:     cmd.Location.Lat,
			Lng:     cmd.Location.Lng,
			Address: cmd.Address,
			Geohash: geo.EncodeGeohash(cmd.Location, geo.DefaultGeohashPrecision),
		},
		ScheduledTime: cmd.ScheduledTime,
		IsEmergency:   cmd.IsEmergency,
		Urgency:       cmd.Urgency,
		Pricing:       pb,
		QuoteID:       quote.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	if err := s.pricing.AttachBooking(ctx, quote.ID, b.ID); err != nil {
		s.log.Warn("linking quote to booking failed",
			zap.String("booking_id", b.ID.String()),
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err),
		)
	}
	metrics.Bookings.WithLabelValues(string(StatusPending)).Inc()
	s.log.Info("booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("service", b.ServiceType),
		zap.String("geohash", b.Location.Geohash),
		zap.Float64("client_estimate", pb.ClientEstimate),
	)
	return b, nil
}

// price quotes the booking, or checks the breakdown the client sent. A
// submitted breakdown must re-validate and must have been priced from this
// booking's own inputs. Instant bookings keep the quote's time while it is
// younger than QuoteTTL.
func (s *Service) price(ctx context.Context, cmd CreateCommand) (pricing.PriceBreakdown, error) {
	distanceKm := cmd.DistanceKm
	if cmd.NurseLocation != nil && s.estimator != nil {
		if err := cmd.NurseLocation.Validate(); err != nil {
			return pricing.PriceBreakdown{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		distanceKm = s.estimator.Estimate(ctx, cmd.Location, *cmd.NurseLocation, cmd.ServiceType).DistanceKm
	}
	req := pricing.Request{
		ServiceType:     cmd.ServiceType,
		DistanceKm:      distanceKm,
		DurationHours:   cmd.DurationHours,
		NurseExperience: cmd.NurseExperience,
		IsEmergency:     cmd.IsEmergency,
		ScheduledTime:   cmd.ScheduledTime,
	}.Rounded()
	if cmd.Pricing == nil {
		return s.pricing.Engine().Calculate(req), nil
	}

	validated, err := s.pricing.Validate(ctx, *cmd.Pricing)
	if err != nil {
		return pricing.PriceBreakdown{}, err
	}
	if req.ScheduledTime == nil {
		at, err := validated.ScheduledAt()
		if err != nil {
			return pricing.PriceBreakdown{}, fmt.Errorf("%w: %w", pricing.ErrBadBreakdown, err)
		}
		if age := s.now().Sub(at); age > QuoteTTL || age < -QuoteTTL {
			return pricing.PriceBreakdown{}, fmt.Errorf("%w: quote from %s has expired", ErrBadRequest, at.Format(time.RFC3339))
		}
		req.ScheduledTime = &at
	}
	want := s.pricing.Engine().Calculate(req)
	if field := inputsDifference(want.Inputs, validated.Inputs); field != "" {
		return pricing.PriceBreakdown{}, fmt.Errorf("%w: breakdown was priced for a different booking (%s)", ErrBadRequest, field)
	}
	return validated, nil
}

// inputsDifference names the first booking input the breakdown was not
// priced with. Billable values and multipliers follow from these.
func inputsDifference(want, got pricing.Inputs) string {
	switch {
	case want.ServiceType != got.ServiceType:
		return "serviceType"
	case want.IsEmergency != got.IsEmergency:
		return "isEmergency"
	case want.DistanceKm != got.DistanceKm:
		return "distanceKm"
	case want.DurationHours != got.DurationHours:
		return "durationHours"
	case want.NurseExperienceLevel != got.NurseExperienceLevel:
		return "nurseExperienceLevel"
	case want.ScheduledTime != got.ScheduledTime:
		return "scheduledTime"
	case want != got:
		return "inputs"
	}
	return ""
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// GetFor returns the booking when uid takes part in it.
func (s *Service) GetFor(ctx context.Context, id, uid types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.VisibleTo(uid) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID types.ID, status Status) ([]*Booking, error) {
	return s.store.ListByPatient(ctx, patientID, status)
}

func (s *Service) ListForNurse(ctx context.Context, nurseID types.ID, status Status) ([]*Booking, error) {
	return s.store.ListByNurse(ctx, nurseID, status)
}

// UpdateStatus moves a booking along the state flow. The patient opens the
// search and picks a nurse (nurse_found); a nurse accepts, starts and
// completes. Either participant may cancel.
func (s *Service) UpdateStatus(ctx context.Context, cmd StatusCommand) (*Booking, error) {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, cmd.To) {
		return nil, ErrInvalidState
	}

	patch := Patch{At: s.now().UTC()}
	switch cmd.To {
	case StatusSearching:
		if cmd.ActorID != b.PatientID {
			return nil, ErrForbidden
		}
	case StatusNurseFound:
		if cmd.ActorID != b.PatientID {
			return nil, ErrForbidden
		}
		if cmd.NurseID == "" || cmd.NurseID == b.PatientID {
			return nil, fmt.Errorf("%w: no nurse to assign", ErrBadRequest)
		}
		patch.NurseID = &cmd.NurseID
	case StatusAccepted:
		if cmd.ActorID == "" || cmd.ActorID == b.PatientID {
			return nil, ErrForbidden
		}
		if b.NurseID != nil && *b.NurseID != cmd.ActorID {
			return nil, ErrForbidden
		}
		patch.NurseID = &cmd.ActorID
	case StatusInProgress, StatusCompleted:
		if b.NurseID == nil || *b.NurseID != cmd.ActorID {
			return nil, ErrForbidden
		}
	case StatusCancelled:
		by := CancelledByNurse
		if cmd.ActorID == b.PatientID {
			by = CancelledByPatient
		}
		return s.Cancel(ctx, CancelCommand{BookingID: cmd.BookingID, ActorID: cmd.ActorID, By: by})
	}

	return s.transition(ctx, b, cmd.To, patch)
}

// Cancel cancels a booking on behalf of its patient or assigned nurse.
func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) (*Booking, error) {
	if cmd.By != CancelledByPatient && cmd.By != CancelledByNurse {
		return nil, fmt.Errorf("%w: cancelledBy must be patient or nurse", ErrBadRequest)
	}
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	switch cmd.By {
	case CancelledByPatient:
		if b.PatientID != cmd.ActorID {
			return nil, ErrForbidden
		}
	case CancelledByNurse:
		if b.NurseID == nil || *b.NurseID != cmd.ActorID {
			return nil, ErrForbidden
		}
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	return s.transition(ctx, b, StatusCancelled, Patch{At: s.now().UTC(), CancelledBy: cmd.By})
}

// Complete finishes an in-progress visit for the assigned nurse.
func (s *Service) Complete(ctx context.Context, id, nurseID types.ID) (*Booking, error) {
	return s.UpdateStatus(ctx, StatusCommand{BookingID: id, To: StatusCompleted, ActorID: nurseID})
}

// Watch streams changes of a booking uid takes part in.
func (s *Service) Watch(ctx context.Context, id, uid types.ID) (<-chan *Booking, error) {
	if _, err := s.GetFor(ctx, id, uid); err != nil {
		return nil, err
	}
	return s.store.Watch(ctx, id)
}

// WatchPatient streams the patient's bookings. Only the patient may listen.
func (s *Service) WatchPatient(ctx context.Context, patientID, uid types.ID) (<-chan []*Booking, error) {
	if patientID == "" || patientID != uid {
		return nil, ErrForbidden
	}
	return s.store.WatchByPatient(ctx, patientID)
}

func (s *Service) transition(ctx context.Context, b *Booking, to Status, patch Patch) (*Booking, error) {
	updated, err := s.store.UpdateStatus(ctx, b.ID, b.Status, to, patch)
	if err != nil {
		return nil, err
	}
	metrics.Bookings.WithLabelValues(string(to)).Inc()
	s.log.Info("booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("from", string(b.Status)),
		zap.String("to", string(to)),
	)
	return updated, nil
}
