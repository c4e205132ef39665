// README: Road-distance estimates through the Google Maps Directions API.
package location

import (
	"context"
	"errors"
	"fmt"
	"math"

	"googlemaps.github.io/maps"

	"nursecare/internal/geo"
	"nursecare/internal/modules/pricing"
)

var ErrNoRoute = errors.New("no route found")

// directionsClient is the part of *maps.Client the estimator uses.
type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// RouteEstimator asks Directions for the nurse-to-patient driving route.
type RouteEstimator struct {
	client directionsClient
	table  *pricing.RateTable
	region string
}

// NewRouteEstimator creates a RouteEstimator with the given API key. Results
// are biased to region (a ccTLD such as "in").
func NewRouteEstimator(apiKey, region string, table *pricing.RateTable) (*RouteEstimator, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return newRouteEstimator(client, region, table), nil
}

func newRouteEstimator(client directionsClient, region string, table *pricing.RateTable) *RouteEstimator {
	if table == nil {
		table = pricing.DefaultRateTable()
	}
	return &RouteEstimator{client: client, table: table, region: region}
}

// Estimate returns the road distance of the first route leg. The ETA is the
// API's driving duration; emergency services keep their faster speed
// assumption when it beats the quoted traffic time.
func (r *RouteEstimator) Estimate(ctx context.Context, patient, nurse geo.Point, serviceType string) (Estimate, error) {
	req := &maps.DirectionsRequest{
		Origin:      nurse.String(),
		Destination: patient.String(),
		Mode:        maps.TravelModeDriving,
		Region:      r.region,
	}

	routes, _, err := r.client.Directions(ctx, req)
	if err != nil {
		return Estimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Estimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	roadKm := float64(leg.Distance.Meters) / 1000
	eta := int(math.Ceil(leg.Duration.Minutes()))
	if r.table.IsEmergencyService(serviceType) {
		if fast := etaMinutes(roadKm, r.table.SpeedFor(serviceType)); fast < eta {
			eta = fast
		}
	}
	return estimateFromKm(r.table, roadKm, eta, SourceRoad), nil
}
