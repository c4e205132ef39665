// README: Prometheus collectors shared by the HTTP layer and the domain services.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, route, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "route", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)

	// Quotes counts computed price breakdowns by service and surge window
	Quotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pricing_quotes_total", Help: "Price breakdowns computed, by service type and surge label."},
		[]string{"service", "surge"},
	)
	// QuoteEstimate observes client estimates in currency units
	QuoteEstimate = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "pricing_client_estimate", Help: "Client estimate of computed quotes.", Buckets: []float64{250, 500, 750, 1000, 1500, 2000, 3000, 5000}},
		[]string{"service"},
	)
	// QuoteValidations counts server-side re-validations by outcome
	QuoteValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "pricing_validations_total", Help: "Breakdown re-validations by result."},
		[]string{"result"},
	)
	// Bookings counts booking status changes
	Bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "bookings_total", Help: "Booking status transitions by target status."},
		[]string{"status"},
	)
)

// RegisterDefault registers collectors to the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(Quotes)
		Registry.MustRegister(QuoteEstimate)
		Registry.MustRegister(QuoteValidations)
		Registry.MustRegister(Bookings)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
