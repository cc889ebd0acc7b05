package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinic-scheduler/internal/db"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/calendar"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/guard"
	"github.com/BruksfildServices01/clinic-scheduler/internal/infra/reports"
	infraRepo "github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/routes"
	ucAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const shutdownTimeout = 10 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-scheduler",
		Short: "Appointment scheduling API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			if _, err := dbpkg.NewDB(cfg); err != nil {
				return err
			}
			log.Info().Str("driver", cfg.DBDriver).Msg("migrations applied")
			return nil
		},
	}
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Repair drift between slots and appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return runReconcile(cmd.Context(), dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "report what would change without writing")
	return cmd
}

// ======================================================
// BOOTSTRAP
// ======================================================

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.New(cfg.Env, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return nil, log, err
	}
	return cfg, log, nil
}

func newCalendar(ctx context.Context, cfg *config.Config, log zerolog.Logger) *calendar.GoogleCalendar {
	return calendar.New(ctx, calendar.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURI,
		RefreshToken: cfg.GoogleRefreshToken,
		CalendarID:   cfg.GoogleCalendarID,
		DoctorEmail:  cfg.DoctorEmail,
		Timezone:     cfg.Timezone,
	}, log)
}

func newGuard(cfg *config.Config, log zerolog.Logger) (domain.SlotGuard, func()) {
	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, booking guard disabled")
		return domain.NoopGuard{}, func() {}
	}

	client, err := guard.NewClient(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("booking guard disabled")
		return domain.NoopGuard{}, func() {}
	}

	return guard.NewRedisGuard(client, cfg.BookingGuardTTL, log), func() { _ = client.Close() }
}

// ======================================================
// SERVE
// ======================================================

func runServer() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validators.Register(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		log.Error().Err(err).Msg("database init failed")
		return err
	}

	ctx := context.Background()

	slotGuard, closeGuard := newGuard(cfg, log)
	defer closeGuard()

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORSMiddleware(cfg.AllowedOrigins()),
	)

	routes.RegisterRoutes(r, db, cfg, routes.Infra{
		Calendar: newCalendar(ctx, cfg, log),
		Guard:    slotGuard,
		Audit:    dispatcher,
		Limiter:  limiter,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	dispatcher.Close()
	closeDB(db, log)

	log.Info().Msg("server stopped")
	return nil
}

func closeDB(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

// ======================================================
// RECONCILE
// ======================================================

func runReconcile(ctx context.Context, dryRun bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	dispatcher := audit.NewDispatcher(audit.New(db), log)
	defer dispatcher.Close()

	var uploader ucAppointment.ReportUploader
	if cfg.ReportBucket != "" {
		uploader = reports.NewS3Uploader(reports.S3Config{
			Bucket:          cfg.ReportBucket,
			Region:          cfg.ReportRegion,
			Endpoint:        cfg.ReportEndpoint,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
	}

	uc := ucAppointment.NewReconcile(ucAppointment.Deps{
		Repo:     infraRepo.NewGormRepository(db),
		Audit:    dispatcher,
		Log:      log,
		DoctorID: cfg.DefaultDoctorID,
	}, uploader)

	report, err := uc.Execute(ctx, dryRun)
	if err != nil {
		log.Error().Err(err).Msg("reconcile failed")
		return err
	}

	log.Info().
		Bool("dry_run", report.DryRun).
		Int("released", len(report.Released)).
		Int("booked", len(report.Booked)).
		Int("unslotted", len(report.Unslotted)).
		Str("report", report.Location).
		Msg("reconcile finished")
	return nil
}
