package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Cheertaboi/class-coupon-ledger/internal/api"
	"github.com/Cheertaboi/class-coupon-ledger/internal/api/middleware"
	"github.com/Cheertaboi/class-coupon-ledger/internal/clock"
	"github.com/Cheertaboi/class-coupon-ledger/internal/config"
	"github.com/Cheertaboi/class-coupon-ledger/internal/logging"
	"github.com/Cheertaboi/class-coupon-ledger/internal/repository"
	"github.com/Cheertaboi/class-coupon-ledger/internal/service"
	"github.com/Cheertaboi/class-coupon-ledger/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.NewPostgresConnection(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("db connect")
	}
	defer conn.Close()

	if cfg.Database.AutoMigrate {
		if err := db.RunMigrations(conn); err != nil {
			logging.Fatal().Err(err).Msg("db migrate")
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("ledger timezone")
	}

	// create ledger with repos
	ledger := service.NewCouponService(
		conn,
		repository.NewCouponRepo(conn),
		repository.NewUsageRepo(conn),
		repository.NewTopUpRepo(),
		clock.NewRealClock(loc),
	)

	handler := api.NewRouter(ledger, middleware.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		RateLimitRequests:  cfg.Security.RateLimitRequests,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("HTTP server Shutdown")
		}
		close(idleConnsClosed)
	}()

	logging.Info().Str("addr", srv.Addr).Msg("starting coupon-ledger")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal().Err(err).Msg("listen")
	}

	<-idleConnsClosed
	logging.Info().Msg("server stopped")
}
