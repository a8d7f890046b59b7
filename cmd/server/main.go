package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/roomescape/internal/config"
	"github.com/iliyamo/roomescape/internal/database"
	"github.com/iliyamo/roomescape/internal/handler"
	"github.com/iliyamo/roomescape/internal/logger"
	"github.com/iliyamo/roomescape/internal/middleware"
	"github.com/iliyamo/roomescape/internal/queue"
	"github.com/iliyamo/roomescape/internal/repository"
	"github.com/iliyamo/roomescape/internal/router"
	"github.com/iliyamo/roomescape/internal/service"
	"github.com/iliyamo/roomescape/internal/telemetry"
	"github.com/iliyamo/roomescape/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Level: cfg.App.LogLevel, Console: cfg.IsDev(), Service: "roomescape-api"})
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		ServiceName:   cfg.Telemetry.ServiceName,
		Environment:   cfg.App.Env,
		CollectorAddr: cfg.Telemetry.CollectorAddr,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("schema migrated")
	}

	rdb := config.NewRedisClient(cfg.Redis)
	var redisPing func(context.Context) error
	if rdb != nil {
		defer rdb.Close()
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else if cfg.Redis.Addr != "" {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable, cache and distributed rate limit disabled")
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		pub := queue.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
		defer pub.Close()
		events = pub
	}

	loc := cfg.Location()
	members := repository.NewMemberRepo(db)
	times := repository.NewTimeRepo(db)
	themes := repository.NewThemeRepo(db)
	reservations := repository.NewReservationRepo(db)

	tokens := utils.NewTokenProvider(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.ExpirationMinutes)*time.Minute)
	memberSvc := service.NewMemberService(members, tokens, utils.NewPasswordHasher(cfg.Auth.BcryptCost))
	timeSvc := service.NewTimeService(times, themes)
	themeSvc := service.NewThemeService(themes, time.Now, loc)
	reservationSvc := service.NewReservationService(reservations, times, themes, events, time.Now, loc)

	if _, err := memberSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.RegisterRoutes(e, router.Handlers{
		Auth:         handler.NewAuthHandler(memberSvc, cfg.Auth.CookieSecure),
		Times:        handler.NewTimeHandler(timeSvc, loc),
		Themes:       handler.NewThemeHandler(themeSvc),
		Reservations: handler.NewReservationHandler(reservationSvc, loc),
		Health:       handler.NewHealthHandler(db, redisPing),
	}, router.Options{
		Logger:         log,
		CORSOrigins:    cfg.App.CORSOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
		Resolver:       memberSvc,
		Cache:          middleware.NewResponseCache(cfg.Cache, rdb),
		Limiter:        middleware.NewTokenBucket(cfg.RateLimit, rdb),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.App.Port
		log.Info().Str("addr", addr).Str("env", cfg.App.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}
