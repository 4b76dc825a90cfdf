package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medmitra/api/internal/config"
	"github.com/medmitra/api/internal/domain/appointment"
	"github.com/medmitra/api/internal/domain/assistant"
	"github.com/medmitra/api/internal/domain/doctor"
	"github.com/medmitra/api/internal/domain/encounter"
	"github.com/medmitra/api/internal/domain/patient"
	"github.com/medmitra/api/internal/domain/prescription"
	"github.com/medmitra/api/internal/domain/triage"
	"github.com/medmitra/api/internal/domain/vitals"
	"github.com/medmitra/api/internal/platform/auth"
	"github.com/medmitra/api/internal/platform/db"
	"github.com/medmitra/api/internal/platform/middleware"
	"github.com/medmitra/api/internal/platform/reporting"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medmitra-server",
		Short: "MedMitra clinic API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

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
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// triageAppointments lets the triage workflow advance an appointment to
// with_doctor without the triage package importing appointment.
type triageAppointments struct {
	svc *appointment.Service
}

func (g *triageAppointments) MarkWithDoctor(ctx context.Context, appointmentID uuid.UUID) error {
	_, err := g.svc.UpdateStatus(ctx, appointmentID, appointment.StatusWithDoctor)
	return err
}

// appointmentDoctors answers "whose appointment is this" for the vitals
// layout resolver.
type appointmentDoctors struct {
	svc *appointment.Service
}

func (a *appointmentDoctors) DoctorForAppointment(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error) {
	appt, err := a.svc.GetAppointment(ctx, appointmentID)
	if err != nil {
		return uuid.Nil, err
	}
	return appt.DoctorID, nil
}

// encounterConsultations feeds finished consultations into the patient
// activity feed.
type encounterConsultations struct {
	svc *encounter.Service
}

func (s *encounterConsultations) RecentConsultations(ctx context.Context, patientID uuid.UUID, limit int) ([]appointment.ActivityItem, error) {
	encs, _, err := s.svc.Search(ctx, encounter.SearchFilter{
		PatientID: patientID,
		Status:    encounter.StatusFinalized,
	}, limit, 0)
	if err != nil {
		return nil, err
	}
	items := make([]appointment.ActivityItem, 0, len(encs))
	for _, e := range encs {
		at := e.CreatedAt
		if e.FinalizedAt != nil {
			at = *e.FinalizedAt
		}
		items = append(items, appointment.ActivityItem{
			Type:       appointment.ActivityConsultation,
			Title:      "Consultation",
			Detail:     e.ChiefComplaint,
			RefID:      e.ID,
			OccurredAt: at,
		})
	}
	return items, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", encounter.IdempotencyKeyHeader},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		}))
	}

	api := e.Group("/api")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	// Vitals catalog
	vitalsRepo := vitals.NewRepo(pool)
	vitalsResolver, err := vitals.NewResolver(vitalsRepo, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build vitals resolver")
	}
	vitalsSvc := vitals.NewService(vitalsRepo, vitalsResolver, logger)
	vitals.NewHandler(vitalsSvc).RegisterRoutes(api)

	// Doctors and their vitals preferences
	doctorSvc := doctor.NewService(doctor.NewRepo(pool), vitalsSvc, logger)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)

	// Patients
	patientSvc := patient.NewService(patient.NewRepo(pool), logger)
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	// Appointments
	apptSvc := appointment.NewService(appointment.NewRepo(pool), logger)
	appointment.NewHandler(apptSvc).RegisterRoutes(api)
	doctorSvc.SetAppointmentResolver(&appointmentDoctors{svc: apptSvc})

	// Triage
	triageSvc := triage.NewService(triage.NewRepo(pool), &triageAppointments{svc: apptSvc}, logger)
	triage.NewHandler(triageSvc).RegisterRoutes(api)

	// Prescription artifacts
	var rxStore prescription.Store
	switch cfg.BlobBackend {
	case "minio":
		rxStore, err = prescription.NewMinioStore(ctx, prescription.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to minio")
		}
		logger.Info().Str("bucket", cfg.MinioBucket).Msg("prescription storage on minio")
	default:
		rxStore = prescription.NewMemoryStore()
		logger.Warn().Msg("prescription storage is in-memory; uploads are lost on restart")
	}
	rxSvc := prescription.NewService(rxStore, logger)
	prescription.NewHandler(rxSvc).RegisterRoutes(api)

	// Encounters
	encSvc := encounter.NewService(encounter.NewRepo(pool), logger)
	detailsSvc := encounter.NewDetailsService(encSvc, patientSvc, triageSvc, rxSvc)
	encounter.NewHandler(encSvc, detailsSvc).RegisterRoutes(api)
	apptSvc.SetConsultationSource(&encounterConsultations{svc: encSvc})

	// Alfa assistant
	sessionTTL := time.Duration(cfg.AlfaSessionTTL) * time.Minute
	var sessions assistant.SessionStore
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid REDIS_URL")
		}
		sessions = assistant.NewRedisSessionStore(redis.NewClient(opt), sessionTTL)
		logger.Info().Msg("assistant sessions on redis")
	} else {
		sessions = assistant.NewMemorySessionStore(sessionTTL)
	}
	var suggester assistant.Suggester
	if cfg.AssistantEnabled {
		gemini, err := assistant.NewGeminiSuggester(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create gemini client")
		}
		suggester = gemini
		logger.Info().Str("model", cfg.GeminiModel).Msg("assistant enabled")
	}
	assistantSvc := assistant.NewService(sessions, suggester, encSvc, logger)
	assistant.NewHandler(assistantSvc).RegisterRoutes(api)

	// Reporting
	reporting.NewHandler(pool).RegisterRoutes(api)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": "0.1.0"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
