package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serenecare/config"
	deliveryHttp "serenecare/internal/delivery/http"
	"serenecare/internal/delivery/dto"
	"serenecare/internal/delivery/http/handler"
	"serenecare/internal/delivery/http/middleware"
	domainRepo "serenecare/internal/domain/repository"
	"serenecare/internal/infrastructure/cache"
	"serenecare/internal/infrastructure/database"
	"serenecare/internal/repository"
	"serenecare/internal/repository/memory"
	"serenecare/internal/service"
	"serenecare/internal/usecase"
	"serenecare/pkg/jwt"
	"serenecare/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
}

// Repositories groups the storage backends chosen by DB_DRIVER.
type Repositories struct {
	Users        domainRepo.UserRepository
	Availability domainRepo.AvailabilityRepository
	Appointments domainRepo.AppointmentRepository
	AuditLogs    domainRepo.AuditLogRepository
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	db, repos, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	tokenStore := service.NewRedisTokenStore(redisClient)
	slotLocker := service.NewRedisSlotLocker(redisClient, cfg.Scheduling.SlotLockTTL)

	httpHandler := NewHandler(cfg, logrus.StandardLogger(), repos, tokenStore, slotLocker)
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// SetupLogger configures the logrus logger
func SetupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	if cfg != nil && cfg.App.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetLevel(logrus.InfoLevel)
}

// OpenStorage connects the configured backend. The returned *gorm.DB is nil
// for the memory driver.
func OpenStorage(cfg *config.Config) (*gorm.DB, Repositories, error) {
	if cfg.DB.Driver == config.DriverMemory {
		logrus.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return nil, Repositories{
			Users:        memory.NewUserRepository(store),
			Availability: memory.NewAvailabilityRepository(store),
			Appointments: memory.NewAppointmentRepository(store),
			AuditLogs:    memory.NewAuditLogRepository(store),
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(cfg.DB); err != nil {
			return nil, Repositories{}, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.IsDevelopment())
	if err != nil {
		return nil, Repositories{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	logrus.Info("Database connected successfully")

	return db, Repositories{
		Users:        repository.NewUserRepository(db),
		Availability: repository.NewAvailabilityRepository(db),
		Appointments: repository.NewAppointmentRepository(db),
		AuditLogs:    repository.NewAuditLogRepository(db),
	}, nil
}

// NewHandler wires services, usecases and handlers into the HTTP router.
// A nil slotLocker leaves reservations to the storage compare-and-set.
func NewHandler(
	cfg *config.Config,
	log *logrus.Logger,
	repos Repositories,
	tokenStore service.TokenStore,
	slotLocker service.SlotLocker,
) http.Handler {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize services
	auditService := service.NewAuditService(log, repos.AuditLogs)
	directory := service.NewDirectoryService(log, repos.Users, cfg.Directory.CacheSize, cfg.Directory.CacheTTL)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, repos.Users, jwtService, tokenStore, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, repos.Availability)
	reservationUsecase := usecase.NewSlotReservationUsecase(log, availabilityUsecase, slotLocker)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, repos.Appointments)
	schedulingUsecase := usecase.NewSchedulingUsecase(log, availabilityUsecase, reservationUsecase, appointmentUsecase,
		directory, auditService, cfg.Scheduling)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, repos.AuditLogs)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(schedulingUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(schedulingUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigin)

	router := deliveryHttp.NewRouter(authHandler, availabilityHandler, appointmentHandler, auditLogHandler, authMiddleware, corsMiddleware)
	return router.Setup()
}

// SeedAdmin creates the admin account once. Re-running with an existing
// email reports created=false.
func SeedAdmin(ctx context.Context, cfg *config.Config, email, password, fullName string) (*dto.UserResponse, bool, error) {
	if cfg.DB.Driver == config.DriverMemory {
		return nil, false, errors.New("seeding requires a persistent database driver")
	}

	db, repos, err := OpenStorage(cfg)
	if err != nil {
		return nil, false, err
	}
	defer closeDB(db)

	log := logrus.StandardLogger()
	auditService := service.NewAuditService(log, repos.AuditLogs)
	// Seeding never issues tokens, so no token store is needed.
	authUsecase := usecase.NewAuthUsecase(log, repos.Users, jwt.NewJWTService(cfg.JWT), nil, auditService)

	return authUsecase.SeedAdmin(ctx, email, password, fullName)
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal is received or the server fails
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	}

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	closeDB(app.DB)

	// Close Redis connection
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			logrus.Warnf("Failed to close Redis: %v", err)
		}
	}
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.Warnf("Failed to close database: %v", err)
	}
}
