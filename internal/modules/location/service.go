// README: Location service: distance/ETA estimates, nurse position updates and nearby search.
package location

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"nursecare/internal/geo"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

var ErrIndexUnavailable = errors.New("proximity index not configured")

const (
	DefaultNearbyRadiusKm = 10.0
	DefaultNearbyLimit    = 50
)

// NurseIndex is the proximity index. *Store implements it.
type NurseIndex interface {
	IndexNurse(ctx context.Context, p NursePosition) error
	NearbyNurses(ctx context.Context, p geo.Point, radiusKm float64, limit int) ([]NursePosition, error)
	RemoveNurse(ctx context.Context, id types.ID) error
}

// RoadEstimator is satisfied by *RouteEstimator.
type RoadEstimator interface {
	Estimate(ctx context.Context, patient, nurse geo.Point, serviceType string) (Estimate, error)
}

type Service struct {
	table *pricing.RateTable
	index NurseIndex
	road  RoadEstimator
	log   *zap.Logger
	now   func() time.Time
}

// NewService builds the location service. index and road are optional.
func NewService(table *pricing.RateTable, index NurseIndex, road RoadEstimator, log *zap.Logger) *Service {
	if table == nil {
		table = pricing.DefaultRateTable()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{table: table, index: index, road: road, log: log.Named("location"), now: time.Now}
}

// Estimate prefers the road estimate when one is configured and falls back
// to the straight-line estimate on any road failure.
func (s *Service) Estimate(ctx context.Context, patient, nurse geo.Point, serviceType string) Estimate {
	if s.road != nil {
		est, err := s.road.Estimate(ctx, patient, nurse, serviceType)
		if err == nil {
			return est
		}
		s.log.Warn("road estimate failed, using straight line",
			zap.String("patient", patient.String()),
			zap.String("nurse", nurse.String()),
			zap.Error(err),
		)
	}
	return EstimateDistanceAndETA(s.table, patient, nurse, serviceType)
}

type NurseUpdate struct {
	NurseID   types.ID
	Point     geo.Point
	Services  []string
	Available bool
}

// UpdateNurseLocation indexes an available nurse or removes an unavailable
// one from the index.
func (s *Service) UpdateNurseLocation(ctx context.Context, u NurseUpdate) (NursePosition, error) {
	if s.index == nil {
		return NursePosition{}, ErrIndexUnavailable
	}
	if err := u.Point.Validate(); err != nil {
		return NursePosition{}, err
	}
	pos := NursePosition{
		NurseID:   u.NurseID,
		Point:     u.Point,
		Geohash:   geo.EncodeGeohash(u.Point, geo.DefaultGeohashPrecision),
		Services:  u.Services,
		UpdatedAt: s.now().UTC(),
	}
	if !u.Available {
		return pos, s.index.RemoveNurse(ctx, u.NurseID)
	}
	return pos, s.index.IndexNurse(ctx, pos)
}

// Nearby lists indexed nurses within radiusKm of the patient that offer
// serviceType, closest first, with straight-line estimates.
func (s *Service) Nearby(ctx context.Context, patient geo.Point, radiusKm float64, serviceType string, limit int) ([]NearbyNurse, error) {
	if s.index == nil {
		return nil, ErrIndexUnavailable
	}
	if err := patient.Validate(); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	positions, err := s.index.NearbyNurses(ctx, patient, radiusKm, limit)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyNurse, 0, len(positions))
	for _, p := range positions {
		if !p.OffersService(serviceType) {
			continue
		}
		rawKm := geo.GreatCircleDistanceKm(patient, p.Point)
		if rawKm > radiusKm {
			continue
		}
		est := EstimateDistanceAndETA(s.table, patient, p.Point, serviceType)
		out = append(out, NearbyNurse{
			NursePosition: p,
			Estimate:      est,
			DistanceText:  FormatDistance(rawKm),
			ETAText:       FormatETA(est.ETAMinutes),
		})
	}
	geo.SortByDistance(out, func(n NearbyNurse) float64 { return n.DistanceKm })
	return out, nil
}
