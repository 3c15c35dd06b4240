package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careloop/hms-api/internal/config"
	"github.com/careloop/hms-api/internal/handler"
	appointmentHandler "github.com/careloop/hms-api/internal/handler/appointment"
	doctorHandler "github.com/careloop/hms-api/internal/handler/doctor"
	patientHandler "github.com/careloop/hms-api/internal/handler/patient"
	reportHandler "github.com/careloop/hms-api/internal/handler/report"
	scheduleHandler "github.com/careloop/hms-api/internal/handler/schedule"
	"github.com/careloop/hms-api/internal/middleware"
	"github.com/careloop/hms-api/internal/repository/postgres"
	"github.com/careloop/hms-api/internal/router"
	"github.com/careloop/hms-api/internal/service/availability"
	"github.com/careloop/hms-api/internal/service/booking"
	doctorService "github.com/careloop/hms-api/internal/service/doctor"
	patientService "github.com/careloop/hms-api/internal/service/patient"
	reportService "github.com/careloop/hms-api/internal/service/report"
	scheduleService "github.com/careloop/hms-api/internal/service/schedule"
	"github.com/careloop/hms-api/pkg/locker"
	"github.com/careloop/hms-api/pkg/logger"
	redisbroker "github.com/careloop/hms-api/pkg/messaging/redis"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	reportRepo := postgres.NewReportRepository(db)

	broker, err := redisbroker.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	var bookingLocker locker.Locker = locker.NewLocalLocker()
	if rb, ok := broker.(*redisbroker.RedisBroker); ok {
		bookingLocker = locker.NewRedisLocker(rb.Client(), cfg.Redis.LockTTL)
	}

	availabilitySvc := availability.NewService(scheduleRepo, appointmentRepo, doctorRepo)
	doctorSvc := doctorService.NewService(doctorRepo, availabilitySvc)
	patientSvc := patientService.NewService(patientRepo)
	scheduleSvc := scheduleService.NewService(scheduleRepo, doctorRepo)
	bookingSvc := booking.NewService(appointmentRepo, availabilitySvc, bookingLocker, appLogger)
	reportSvc := reportService.NewService(reportRepo, paymentRepo)

	h := handler.NewHandler(db)
	doctorH := doctorHandler.NewHandler(doctorSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc, availabilitySvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc)
	reportH := reportHandler.NewHandler(reportSvc)

	r := router.NewRouter(
		doctorH,
		patientH,
		scheduleH,
		appointmentH,
		reportH,
		h,
		router.RouterConfig{
			RateLimit:     cfg.Server.RateLimit,
			RateBurst:     cfg.Server.RateBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "hms_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
