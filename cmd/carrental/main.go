package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carrental/internal/app/outbox"
	"carrental/internal/app/policies"
	"carrental/internal/app/services/rental"
	domainbooking "carrental/internal/domain/booking"
	domainvehicle "carrental/internal/domain/vehicle"
	"carrental/internal/infra/broker/kafka"
	"carrental/internal/infra/config"
	"carrental/internal/infra/db/mongo"
	"carrental/internal/infra/db/postgres"
	ginserver "carrental/internal/infra/http/gin"
	"carrental/internal/infra/jobs"
	"carrental/internal/infra/notify"
	"carrental/internal/infra/obs"
	"carrental/internal/infra/payment"
	"carrental/internal/infra/security"
	"carrental/internal/infra/storage/memory"
	"carrental/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	if cfg.SeedDemoData {
		if _, err := loadVehicleFixtures(ctx, app.vehicles, cfg.VehicleFixtures, time.Now().UTC(), logger); err != nil {
			logger.Warn("vehicle fixtures load failed", "error", err)
		}
	}

	scheduler, err := jobs.NewScheduler(app.service, jobs.Config{Spec: cfg.CompletionSchedule, Logger: logger})
	if err != nil {
		logger.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	if app.relay != nil {
		go func() {
			if err := app.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox relay stopped", "error", err)
			}
		}()
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: app.checks}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		scheduler.Stop(shutdownCtx)
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "payments", cfg.PaymentProvider)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	service  *rental.Service
	vehicles domainvehicle.Repository
	handlers ginserver.Handlers
	outbox   outbox.Store
	relay    *outbox.Relay
	checks   map[string]obs.Check
	closers  []func() error
}

func (a *application) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{checks: map[string]obs.Check{}}
	if err := app.init(ctx, cfg, logger); err != nil {
		return nil, err
	}
	return app, nil
}

// init wires every dependency. On failure it releases whatever was already
// opened.
func (a *application) init(ctx context.Context, cfg config.Config, logger *slog.Logger) (err error) {
	defer func() {
		if err != nil {
			a.close(logger)
			a.closers = nil
		}
	}()

	vehicles, bookings, err := a.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.vehicles = vehicles

	events, err := a.eventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}
	images, err := a.imageStore(cfg, logger)
	if err != nil {
		return err
	}
	payments, err := newPaymentVerifier(cfg)
	if err != nil {
		return err
	}
	verifier, err := security.NewVerifier(cfg.JWTSecret, cfg.JWTAudience)
	if err != nil {
		return err
	}

	a.service = &rental.Service{
		Vehicles: vehicles,
		Bookings: bookings,
		Payments: payments,
		Events:   events,
		Notifier: notifier,
		Images:   images,
		Logger:   logger,
	}
	a.handlers = ginserver.Handlers{
		Vehicle: ginserver.VehicleHandler{Service: a.service, Logger: logger},
		Booking: ginserver.BookingHandler{Service: a.service, Logger: logger},
		Admin:   ginserver.AdminHandler{Service: a.service, Logger: logger},
		Auth:    ginserver.Authenticator{Verifier: verifier, Logger: logger},
	}
	return nil
}

func (a *application) openStore(ctx context.Context, cfg config.Config) (domainvehicle.Repository, domainbooking.Repository, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() error { return client.Close(context.Background()) })
		if err := client.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		a.checks["mongo"] = client.Ping
		a.outbox = mongo.NewOutboxStore(client.DB)
		return mongo.NewVehicleRepository(client.DB), mongo.NewBookingRepository(client.DB), nil
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		a.checks["postgres"] = pool.Ping
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		a.outbox = memory.NewOutbox()
		return postgres.NewVehicleRepository(pool), postgres.NewBookingRepository(pool), nil
	default:
		a.outbox = memory.NewOutbox()
		return memory.NewVehicleRepository(), memory.NewBookingRepository(), nil
	}
}

func (a *application) eventPublisher(cfg config.Config, logger *slog.Logger) (policies.EventPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return kafka.LogPublisher{Logger: logger}, nil
	}
	producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, ClientID: "carrental", MaxRetries: 3})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	a.closers = append(a.closers, producer.Close)
	a.relay = &outbox.Relay{
		Store:    a.outbox,
		Sender:   &kafka.EventPublisher{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix, Logger: logger},
		Interval: cfg.OutboxPollInterval,
		Backoff:  cfg.RetryBackoff,
		Logger:   logger,
	}
	return outbox.Recorder{Store: a.outbox}, nil
}

func (a *application) imageStore(cfg config.Config, logger *slog.Logger) (policies.ImageStore, error) {
	if cfg.S3Endpoint == "" {
		return s3.NoopStore{}, nil
	}
	store, err := s3.NewImageStore(s3.Config{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
	}, logger)
	if err != nil {
		return nil, err
	}
	a.checks["s3"] = store.Ping
	return store, nil
}

func newNotifier(cfg config.Config, logger *slog.Logger) (policies.Notifier, error) {
	if cfg.SendGridAPIKey == "" {
		return notify.LogNotifier{Logger: logger}, nil
	}
	return notify.NewSendGrid(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger)
}

func newPaymentVerifier(cfg config.Config) (policies.PaymentVerifier, error) {
	if cfg.PaymentProvider == config.PaymentStripe {
		return payment.NewStripeVerifier(cfg.StripeSecretKey, cfg.StripeCurrency)
	}
	return payment.DemoVerifier{}, nil
}
