package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/mravi/bloodconnect/internal/app/controllers"
	appMigrations "github.com/mravi/bloodconnect/internal/app/migrations"
	appRepos "github.com/mravi/bloodconnect/internal/app/repositories"
	appRoutes "github.com/mravi/bloodconnect/internal/app/routes"
	appServices "github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/config"
	"github.com/mravi/bloodconnect/internal/db"
	appMiddleware "github.com/mravi/bloodconnect/internal/middleware"
	pkgAuth "github.com/mravi/bloodconnect/internal/pkg/auth"
	"github.com/mravi/bloodconnect/internal/pkg/email"
	"github.com/mravi/bloodconnect/internal/pkg/filestorage"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
	"github.com/mravi/bloodconnect/internal/pkg/logger"
	"github.com/mravi/bloodconnect/internal/pkg/pdfgen"
	"github.com/mravi/bloodconnect/internal/pkg/sessioncache"
	"github.com/mravi/bloodconnect/internal/pkg/websocket"
	"github.com/mravi/bloodconnect/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            appServices.AuthService
	RequestService         appServices.RequestService
	StudentService         appServices.StudentService
	NotificationService    appServices.NotificationService
	CertificateService     appServices.CertificateService
	AdminService           appServices.AdminService
	LogsService            appServices.LogsService
	AuthController         *appControllers.AuthController
	RequestController      *appControllers.RequestController
	StudentController      *appControllers.StudentController
	NotificationController *appControllers.NotificationController
	CertificateController  *appControllers.CertificateController
	AdminController        *appControllers.AdminController
	LogsController         *appControllers.LogsController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	RateLimiter            *appMiddleware.RateLimiter
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	SessionCache           *sessioncache.Cache
	RedisClient            *redis.Client
	Hub                    *websocket.Hub
	WSHandler              *websocket.Handler
	FileStorage            *filestorage.LocalStorage
	Database               *db.PostgresDB
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Log the error but keep starting up
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, shared infrastructure,
// services, middleware and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	// Redis backs both the session cache and the rate limiter. The service
	// degrades gracefully when Redis is unavailable, so a failed ping is a
	// warning rather than a startup error.
	deps.RedisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deps.RedisClient.Ping(ctx).Err(); err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, sessions and rate limits degrade to fail-open")
	}

	sessionTTL := helpers.ParseDuration(cfg.Session.TTL, 168*time.Hour)
	deps.SessionCache = sessioncache.New(deps.RedisClient, sessionTTL)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    helpers.ParseDuration(cfg.JWT.TokenExpiration, 24*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.Server.BaseURL,
	}, lgr)

	deps.Hub = websocket.NewHub(lgr)
	go deps.Hub.Run()
	deps.WSHandler = websocket.NewHandler(deps.Hub, lgr)

	generator, err := pdfgen.NewGenerator(filepath.Join(cfg.Server.StoragePath, "certificates"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize certificate generator")
		return nil, fmt.Errorf("failed to initialize certificate generator: %w", err)
	}

	fileStorageBaseURL := cfg.Server.BaseURL + "/uploads"
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, fileStorageBaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// Services. The notifier comes first because both the certificate and
	// request services fan events out through it.
	deps.NotificationService = appServices.NewNotificationService(
		deps.Repos.NotificationRepository,
		deps.Repos.UserRepository,
		deps.Hub,
		emailService,
		lgr,
	)
	deps.CertificateService = appServices.NewCertificateService(
		deps.Repos.CertificateRepository,
		deps.Repos.UserRepository,
		deps.Repos.RequestRepository,
		generator,
		deps.NotificationService,
		lgr,
	)
	deps.RequestService = appServices.NewRequestService(
		database,
		deps.Repos.RequestRepository,
		deps.Repos.UserRepository,
		deps.Repos.OptInRepository,
		deps.CertificateService,
		deps.NotificationService,
		deps.FileStorage,
		lgr,
	)
	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.LoginHistoryRepository,
		deps.JWTService,
		deps.SessionCache,
		emailService,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.UserRepository,
		emailService,
		lgr,
	)
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.UserRepository,
		deps.Repos.RequestRepository,
		deps.Repos.OptInRepository,
		lgr,
	)
	deps.LogsService = appServices.NewLogsService(deps.Repos.SystemLogRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.SessionCache)
	deps.RateLimiter = appMiddleware.NewRateLimiter(deps.RedisClient, cfg.RateLimit.Enabled, lgr)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService)
	deps.RequestController = appControllers.NewRequestController(deps.RequestService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService)
	deps.NotificationController = appControllers.NewNotificationController(deps.NotificationService)
	deps.CertificateController = appControllers.NewCertificateController(deps.CertificateService)
	deps.AdminController = appControllers.NewAdminController(deps.AdminService)
	deps.LogsController = appControllers.NewLogsController(deps.LogsService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()
	router.Use(appMiddleware.Audit(deps.LogsService))

	appRoutes.SetupRouter(router,
		cfg,
		deps.AuthController,
		deps.RequestController,
		deps.StudentController,
		deps.NotificationController,
		deps.CertificateController,
		deps.AdminController,
		deps.LogsController,
		deps.WSHandler,
		deps.AuthMiddleware,
		deps.RateLimiter,
	)

	return router
}
