// README: Entry point; loads config, wires stores and services, serves the HTTP API until signalled.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nursecare/internal/config"
	httptransport "nursecare/internal/http"
	"nursecare/internal/infra"
	"nursecare/internal/logger"
	"nursecare/internal/metrics"
	"nursecare/internal/modules/booking"
	"nursecare/internal/modules/location"
	"nursecare/internal/modules/pricing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zlog, err := logger.New(logger.Config{
		ServiceName: "nursecare-api",
		Version:     cfg.Version,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterDefault()
	gin.SetMode(gin.ReleaseMode)

	engine, err := newEngine(cfg.Pricing)
	if err != nil {
		return err
	}
	zlog.Info("pricing engine ready",
		zap.String("pricing_version", engine.Table().Version),
		zap.String("timezone", engine.Location().String()),
	)

	var quotes pricing.QuoteRecorder
	if cfg.DB.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		quotes = pricing.NewStore(pool)
	} else {
		zlog.Warn("quote audit log disabled: NURSECARE_DB_DSN not set")
	}
	pricingSvc := pricing.NewService(engine, quotes, zlog)

	var index location.NurseIndex
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer rdb.Close()
		index = location.NewStore(rdb)
	} else {
		zlog.Warn("nurse proximity index disabled: NURSECARE_REDIS_ADDR not set")
	}
	var road location.RoadEstimator
	if cfg.Location.MapsAPIKey != "" {
		re, err := location.NewRouteEstimator(cfg.Location.MapsAPIKey, cfg.Location.MapsRegion, engine.Table())
		if err != nil {
			return err
		}
		road = re
	}
	locationSvc := location.NewService(engine.Table(), index, road, zlog)

	deps := httptransport.ServerDeps{
		Pricing:        pricingSvc,
		Location:       locationSvc,
		Log:            zlog,
		QuoteRPS:       cfg.Pricing.QuoteRateLimit,
		QuoteBurst:     cfg.Pricing.QuoteBurst,
		NearbyRadiusKm: cfg.Location.NearbyRadiusKm,
		NearbyLimit:    cfg.Location.NearbyLimit,
	}
	if cfg.FirebaseEnabled() {
		fb, err := infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			return err
		}
		defer func() { _ = fb.Close() }()
		deps.Verifier = fb.Verifier
		deps.Booking = booking.NewService(booking.NewFirestoreStore(fb.Firestore), pricingSvc, locationSvc, zlog)
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httptransport.NewServer(deps).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newEngine(cfg config.PricingConfig) (*pricing.Engine, error) {
	table, err := pricing.LoadRateTable(cfg.TableFile)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return pricing.NewEngine(table, pricing.WithLocation(loc)), nil
}
