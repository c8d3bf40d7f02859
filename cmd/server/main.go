package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/config"
	bookingEvents "github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/handler"
	"github.com/stayloop/service-booking/internal/repository"
	"github.com/stayloop/service-booking/pkg/auth"
	"github.com/stayloop/service-booking/pkg/database"
	"github.com/stayloop/service-booking/pkg/health"
	"github.com/stayloop/service-booking/pkg/kafka"
	"github.com/stayloop/service-booking/pkg/logger"
	"github.com/stayloop/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.TokenCreditModel{},
			&repository.ListingModel{},
			&repository.AvailabilityPeriodModel{},
			&repository.BookingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, cfg.MigrationsDir, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	periodRepo := repository.NewGormPeriodRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	ledger := repository.NewGormBookingLedger(db)

	// Initialize application services
	userService := application.NewUserService(userRepo, kafkaProducer, log)
	listingService := application.NewListingService(listingRepo, log)
	availabilityService := application.NewAvailabilityService(periodRepo, listingRepo, bookingRepo, log)
	bookingService := application.NewBookingService(
		bookingRepo,
		ledger,
		listingRepo,
		periodRepo,
		kafkaProducer,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
	paymentConsumer := bookingEvents.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		userService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	userHandler := handler.NewUserHandler(userService)
	listingHandler := handler.NewListingHandler(listingService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService)

	webhookHandler, err := handler.NewWebhookHandler(userService, cfg.WebhookConfig.SigningSecret, log)
	if err != nil {
		log.Fatal("failed to create webhook handler", zap.Error(err))
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	userHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	listingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	availabilityHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	webhookHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
