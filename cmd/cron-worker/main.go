package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/discope/discope-backend/internal/app"
	"github.com/discope/discope-backend/internal/cron"
	"github.com/discope/discope-backend/pkg/config"
	"github.com/discope/discope-backend/pkg/db"
	"github.com/discope/discope-backend/pkg/instance"
	"github.com/discope/discope-backend/pkg/logger"
	"github.com/discope/discope-backend/pkg/metrics"
	"github.com/discope/discope-backend/pkg/migrate"
	"github.com/discope/discope-backend/pkg/redis"
)

func main() {
	runOnce := flag.Bool("run-once", false, "run the jobs a single time and exit")
	jobList := flag.String("jobs", "", "comma separated job names for -run-once (default: all)")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := app.NewServices(dbClient, cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	registry, err := buildRegistry(cfg, logg, dbClient, services)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockKey, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})

	if *runOnce {
		names := splitJobs(*jobList)
		logg.Info(logg.WithFields(ctx, map[string]any{"jobs": names}), "running cron jobs once")
		if err := service.RunOnce(ctx, names...); err != nil {
			logg.Error(ctx, "cron run failed", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, services *app.Services) (*cron.Registry, error) {
	optionExpiry, err := cron.NewOptionExpiryJob(cron.OptionExpiryJobParams{
		Logger:   logg,
		Bookings: services.BookingRepo,
		Workflow: services.Workflow,
	})
	if err != nil {
		return nil, err
	}
	paymentStatus, err := cron.NewPaymentStatusJob(cron.PaymentStatusJobParams{
		Logger:   logg,
		DB:       dbClient,
		Bookings: services.BookingRepo,
		Workflow: services.Workflow,
		Fundings: services.Fundings,
		Alerts:   services.Alerts,
	})
	if err != nil {
		return nil, err
	}
	bankReconcile, err := cron.NewBankReconcileJob(cron.BankReconcileJobParams{
		Logger:     logg,
		Reconciler: services.Reconciliation,
	})
	if err != nil {
		return nil, err
	}
	archiveSweep, err := cron.NewArchiveSweepJob(cron.ArchiveSweepJobParams{
		Logger:    logg,
		Bookings:  services.BookingRepo,
		Workflow:  services.Workflow,
		AfterDays: cfg.Booking.ArchiveAfterDays,
	})
	if err != nil {
		return nil, err
	}
	outboxRetention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: services.OutboxRepo,
		Retention:  cfg.Outbox.RetentionDays,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(optionExpiry, paymentStatus, bankReconcile, archiveSweep, outboxRetention), nil
}

func splitJobs(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
