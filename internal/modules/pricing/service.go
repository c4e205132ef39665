// README: Pricing service: computes quotes, records them for audit, re-validates submitted breakdowns.
package pricing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"nursecare/internal/metrics"
	"nursecare/internal/types"
)

// QuoteRecorder persists computed quotes. *Store implements it.
type QuoteRecorder interface {
	Save(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id types.ID) (*Quote, error)
}

type Service struct {
	engine *Engine
	store  QuoteRecorder
	log    *zap.Logger
}

// NewService wires the engine to an optional audit store; a nil store skips
// recording.
func NewService(engine *Engine, store QuoteRecorder, log *zap.Logger) *Service {
	if engine == nil {
		engine = Default
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{engine: engine, store: store, log: log.Named("pricing")}
}

func (s *Service) Engine() *Engine {
	return s.engine
}

// Quote prices req and records the result. The distance is rounded first so
// the recorded breakdown re-validates. A failed audit write is logged and
// does not fail the quote.
func (s *Service) Quote(ctx context.Context, req Request, patientID types.ID) Quote {
	return s.Record(ctx, s.engine.Calculate(req.Rounded()), patientID)
}

// Record stores an already computed (or already validated) breakdown in
// the audit log and counts it.
func (s *Service) Record(ctx context.Context, pb PriceBreakdown, patientID types.ID) Quote {
	q := Quote{
		ID:        types.NewID(),
		PatientID: patientID,
		Pricing:   pb,
		CreatedAt: time.Now().UTC(),
	}

	surge := ""
	if pb.Breakdown.SurgeLabel != nil {
		surge = *pb.Breakdown.SurgeLabel
	}
	service := s.metricService(pb.Inputs.ServiceType)
	metrics.Quotes.WithLabelValues(service, surge).Inc()
	metrics.QuoteEstimate.WithLabelValues(service).Observe(pb.ClientEstimate)

	if s.store != nil {
		if err := s.store.Save(ctx, &q); err != nil {
			s.log.Warn("recording quote failed",
				zap.String("quote_id", q.ID.String()),
				zap.Error(err),
			)
		}
	}
	s.log.Debug("quote computed",
		zap.String("quote_id", q.ID.String()),
		zap.String("service", pb.Inputs.ServiceType),
		zap.String("tier", string(pb.Inputs.NurseExperienceLevel)),
		zap.String("surge", surge),
		zap.Float64("client_estimate", pb.ClientEstimate),
	)
	return q
}

// AttachBooking links a recorded quote to the booking it priced, when the
// audit store supports it.
func (s *Service) AttachBooking(ctx context.Context, quoteID, bookingID types.ID) error {
	linker, ok := s.store.(interface {
		AttachBooking(ctx context.Context, quoteID, bookingID types.ID) error
	})
	if !ok {
		return nil
	}
	return linker.AttachBooking(ctx, quoteID, bookingID)
}

// Validate re-runs the engine over a submitted breakdown.
func (s *Service) Validate(ctx context.Context, submitted PriceBreakdown) (PriceBreakdown, error) {
	want, err := s.engine.Validate(submitted)
	result := "ok"
	switch {
	case errors.Is(err, ErrEstimateMismatch):
		result = "mismatch"
	case errors.Is(err, ErrVersionMismatch):
		result = "version_mismatch"
	case err != nil:
		result = "malformed"
	}
	metrics.QuoteValidations.WithLabelValues(result).Inc()
	if err != nil {
		s.log.Info("breakdown rejected",
			zap.String("service", submitted.Inputs.ServiceType),
			zap.Float64("submitted_estimate", submitted.ClientEstimate),
			zap.Float64("recomputed_estimate", want.ClientEstimate),
			zap.Error(err),
		)
	}
	return want, err
}

func (s *Service) GetQuote(ctx context.Context, id types.ID) (*Quote, error) {
	if s.store == nil {
		return nil, ErrQuoteNotFound
	}
	return s.store.Get(ctx, id)
}

// metricService keeps label cardinality bounded to configured services.
func (s *Service) metricService(serviceType string) string {
	if _, ok := s.engine.table.BaseFares[serviceType]; ok {
		return serviceType
	}
	return "other"
}
