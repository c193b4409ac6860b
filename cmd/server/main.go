package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/auth"
	"github.com/medideal/records-api/internal/config"
	"github.com/medideal/records-api/internal/database"
	"github.com/medideal/records-api/internal/handlers"
	"github.com/medideal/records-api/internal/middleware"
	"github.com/medideal/records-api/internal/models"
	"github.com/medideal/records-api/internal/notify"
	"github.com/medideal/records-api/internal/repository"
	"github.com/medideal/records-api/internal/response"
	"github.com/medideal/records-api/internal/services"
	"github.com/medideal/records-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting records API")

	response.SetProductionMode(cfg.IsProduction())

	// Connect to database
	dbConfig := database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
		LogLevel: cfg.Database.LogLevel,
	}

	if err := database.Connect(dbConfig); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	// Initialize stores
	doctorStore := repository.NewStore[models.Doctor]()
	patientStore := repository.NewStore[models.Patient]()
	recordRepo := repository.NewRecordRepository()

	// Initialize collaborators
	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	mailer := notify.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)

	// Initialize services
	doctorAccounts := services.NewAccountService[models.Doctor, *models.Doctor](doctorStore, tokens)
	patientAccounts := services.NewAccountService[models.Patient, *models.Patient](patientStore, tokens)
	recordService := services.NewRecordService(
		recordRepo, doctorStore, patientStore, mailer, cfg.SMTP.From, logger.With("records"),
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	doctorAuth := handlers.NewAccountHandler[models.Doctor, *models.Doctor](doctorAccounts, handlers.DecodeDoctorSignup)
	patientAuth := handlers.NewAccountHandler[models.Patient, *models.Patient](patientAccounts, handlers.DecodePatientSignup)
	doctorResource := handlers.NewResource[models.Doctor](doctorStore, func() handlers.PatchRequest { return &handlers.UpdateDoctorRequest{} })
	patientResource := handlers.NewResource[models.Patient](patientStore, func() handlers.PatchRequest { return &handlers.UpdatePatientRequest{} })
	recordHandler := handlers.NewRecordHandler(recordService)

	// Auth guards
	findDoctor := func(ctx context.Context, id uuid.UUID) (models.Account, error) {
		doctor, err := doctorStore.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return doctor, nil
	}
	findPatient := func(ctx context.Context, id uuid.UUID) (models.Account, error) {
		patient, err := patientStore.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return patient, nil
	}
	authDoctor := middleware.Authenticate(tokens, "doctor", findDoctor)
	authPatient := middleware.Authenticate(tokens, "patient", findPatient)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no authentication required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/doctors", func(r chi.Router) {
		r.Get("/", doctorResource.GetAll)
		r.Post("/signup", doctorAuth.Signup)
		r.Post("/login", doctorAuth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authDoctor)
			r.With(middleware.BindSelf).Get("/me", doctorResource.GetOne)
			r.With(middleware.BindSelf).Patch("/me", doctorResource.Update)
			r.Patch("/changePassword", doctorAuth.ChangePassword)
		})
	})

	r.Route("/api/patients", func(r chi.Router) {
		r.Get("/", patientResource.GetAll)
		r.Post("/signup", patientAuth.Signup)
		r.Post("/login", patientAuth.Login)

		r.Group(func(r chi.Router) {
			r.Use(authPatient)
			r.With(middleware.BindSelf).Get("/me", patientResource.GetOne)
			r.With(middleware.BindSelf).Patch("/me", patientResource.Update)
			r.Patch("/changePassword", patientAuth.ChangePassword)
		})
	})

	r.Route("/api/records", func(r chi.Router) {
		r.Use(authDoctor)
		r.Post("/", recordHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.BindSelf)
			r.Get("/owned", recordHandler.ListOwned)
			r.Patch("/owned/send-message", recordHandler.SendMessageToAll)
			r.Patch("/owned/send-message/{patientId}", recordHandler.SendMessageToOne)
			r.Get("/owned/{patientId}", recordHandler.GetOwned)
			r.Patch("/owned/{patientId}", recordHandler.UpdateOwned)
		})
	})

	// Unmatched routes
	unmatched := func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, apperror.NotImplemented(fmt.Sprintf("Can not %s %s", r.Method, r.URL.Path)))
	}
	r.NotFound(unmatched)
	r.MethodNotAllowed(unmatched)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
