package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/careloop/hms-api/internal/config"
	"github.com/careloop/hms-api/internal/repository/postgres"
	"github.com/careloop/hms-api/pkg/email"
	"github.com/careloop/hms-api/pkg/logger"
	redisbroker "github.com/careloop/hms-api/pkg/messaging/redis"
	"github.com/careloop/hms-api/pkg/metrics"
	"github.com/careloop/hms-api/pkg/worker"
)

// Overrides lets deployments tune the worker without touching config files.
type Overrides struct {
	BatchSize    int           `envconfig:"BATCH_SIZE"`
	PollInterval time.Duration `envconfig:"POLL_INTERVAL"`
	HealthPort   string        `envconfig:"HEALTH_PORT" default:"8081"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var overrides Overrides
	if err := envconfig.Process("worker", &overrides); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker overrides")
	}

	workerCfg := cfg.Outbox.ToWorkerConfig()
	if overrides.BatchSize > 0 {
		workerCfg.BatchSize = overrides.BatchSize
	}
	if overrides.PollInterval > 0 {
		workerCfg.PollInterval = overrides.PollInterval
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)

	m := metrics.New("hms_worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, workerCfg, appLogger, m)

	sender := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	reminders := worker.NewReminderWorker(broker, patientRepo, doctorRepo, sender, appLogger, m)

	startHealthServer(overrides.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Shutting down...")
		cancel()
	}()

	go func() {
		if err := reminders.Start(ctx); err != nil {
			appLogger.Error(err, "Reminder worker stopped")
		}
	}()

	processor.Start(ctx)
}

func startHealthServer(port string, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			appLogger.Error(err, "Health check server failed")
			os.Exit(1)
		}
	}()
}
