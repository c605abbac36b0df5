package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/arm-service-desk/internal/config"
	"github.com/psds-microservice/arm-service-desk/internal/database"
	"github.com/psds-microservice/arm-service-desk/internal/kafka"
	"github.com/psds-microservice/arm-service-desk/internal/router"
	"github.com/psds-microservice/arm-service-desk/internal/service"
	"github.com/psds-microservice/arm-service-desk/internal/store"
	"github.com/rs/zerolog"
)

// API is the desk API server (mode "api").
type API struct {
	cfg     *config.Config
	httpSrv *http.Server
	events  *kafka.Producer
	close   func() error
	log     zerolog.Logger
}

// NewAPI wires the store, services and router. With the postgres store it
// applies pending migrations first.
func NewAPI(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		st      store.Store
		ping    func() error
		closeDB = func() error { return nil }
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store: data is lost on exit")
		st = store.NewMemory()
	default:
		if err := database.MigrateUp(cfg.DatabaseURL(), log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		st = store.NewPostgres(db)
		ping = sqlDB.Ping
		closeDB = sqlDB.Close
	}

	auth := service.NewAuthService(st, cfg.JWTSecret, cfg.TokenTTL)
	seeded, err := auth.Seed(ctx, cfg.SeedUsers)
	if err != nil {
		_ = closeDB()
		return nil, fmt.Errorf("seed users: %w", err)
	}
	if seeded > 0 {
		log.Info().Int("users", seeded).Msg("seeded desk users")
	}

	events := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicDesk, log)
	var producer kafka.DeskEventProducer
	if events.Enabled() {
		producer = events
	}
	desk := service.NewDeskService(st, producer)

	httpSrv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Deps{
			Auth: auth,
			Desk: desk,
			Ping: ping,
			Log:  log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, httpSrv: httpSrv, events: events, close: closeDB, log: log}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info().
		Str("addr", a.httpSrv.Addr).
		Str("api", base+"/api").
		Str("swagger", base+"/swagger/index.html").
		Str("health", base+"/health").
		Str("store", a.cfg.Store).
		Msg("desk API listening")

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.cleanup()
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.httpSrv.Shutdown(shutdownCtx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	a.log.Info().Msg("desk API stopped")
	return nil
}

func (a *API) cleanup() {
	if err := a.events.Close(); err != nil {
		a.log.Warn().Err(err).Msg("kafka close")
	}
	if err := a.close(); err != nil {
		a.log.Warn().Err(err).Msg("database close")
	}
}
