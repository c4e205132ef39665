// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nursecare/internal/http/handlers"
	"nursecare/internal/http/middleware"
	"nursecare/internal/metrics"
)

func NewRouter(deps ServerDeps, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(deps.QuoteRPS, deps.QuoteBurst)
	public := r.Group("/api", limiter.Middleware())

	pricingHandler := handlers.NewPricingHandler(deps.Pricing, deps.Location)
	public.POST("/pricing/quote", pricingHandler.Quote)
	public.POST("/pricing/validate", pricingHandler.Validate)
	public.GET("/pricing/config", pricingHandler.Config)
	public.GET("/pricing/services", pricingHandler.Services)
	public.GET("/pricing/quotes/:id", pricingHandler.GetQuote)

	if deps.Location != nil {
		locationHandler := handlers.NewLocationHandler(deps.Location, deps.NearbyRadiusKm, deps.NearbyLimit)
		public.POST("/location/estimate", locationHandler.Estimate)
		public.GET("/location/geohash", locationHandler.Geohash)
		public.GET("/nurses/nearby", locationHandler.Nearby)

		if deps.Verifier != nil {
			nurses := r.Group("/api/nurses", middleware.Auth(deps.Verifier))
			nurses.PUT("/:id/location", locationHandler.UpdateNurse)
		}
	}

	if deps.Booking != nil && deps.Verifier != nil {
		bookingHandler := handlers.NewBookingHandler(deps.Booking)
		bookings := r.Group("/api/bookings", middleware.Auth(deps.Verifier))
		bookings.POST("", limiter.Middleware(), bookingHandler.Create)
		bookings.GET("", bookingHandler.List)
		bookings.GET("/watch", bookingHandler.WatchMine)
		bookings.GET("/:id", bookingHandler.Get)
		bookings.POST("/:id/status", bookingHandler.UpdateStatus)
		bookings.POST("/:id/cancel", bookingHandler.Cancel)
		bookings.GET("/:id/watch", bookingHandler.Watch)
	} else {
		log.Warn("booking routes disabled: firebase not configured")
	}

	return r
}
