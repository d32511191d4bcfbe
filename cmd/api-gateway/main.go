package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal-api/api/swagger"
	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/repository"
	"github.com/noah-isme/school-portal-api/internal/router"
	"github.com/noah-isme/school-portal-api/internal/service"
	"github.com/noah-isme/school-portal-api/pkg/cache"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
	"github.com/noah-isme/school-portal-api/pkg/export"
	"github.com/noah-isme/school-portal-api/pkg/jobs"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	"github.com/noah-isme/school-portal-api/pkg/mailer"
	"github.com/noah-isme/school-portal-api/pkg/storage"
)

// @title School Portal API
// @version 1.0.0
// @description Registration approval workflow and school records.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	cacheSvc := newCache(cfg, metrics, logr)

	mailQueue := jobs.NewQueue(mailer.JobType, countedMail(mailer.QueueHandler(mailer.New(cfg.Mail, logr)), metrics), jobs.QueueConfig{
		Workers:    cfg.Mail.Workers,
		BufferSize: 64,
		MaxRetries: cfg.Mail.Retries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	handlers, err := buildHandlers(cfg, db, cacheSvc, metrics, mailQueue, logr)
	if err != nil {
		logr.Fatal("failed to build handlers", zap.Error(err))
	}

	engine := router.New(handlers.routes, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Auth:           handlers.auth,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

type wiring struct {
	routes router.Handlers
	auth   *service.AuthService
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, cacheSvc *service.CacheService, metrics *service.MetricsService, mail *jobs.Queue, logr *zap.Logger) (*wiring, error) {
	validate := service.NewValidator()
	tx := database.NewTransactor(db)

	users := repository.NewUserRepository(db)
	parents := repository.NewParentRepository(db)
	teachers := repository.NewTeacherRepository(db)
	students := repository.NewStudentRepository(db)
	classes := repository.NewClassRepository(db)
	registrations := repository.NewRegistrationRepository(db)
	notifications := repository.NewNotificationRepository(db)
	documents := repository.NewDocumentRepository(db)
	attendance := repository.NewAttendanceRepository(db)
	messages := repository.NewMessageRepository(db)
	updates := repository.NewSchoolUpdateRepository(db)

	fileStore, err := storage.NewLocalStorage(cfg.Documents.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init document storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	authSvc := service.NewAuthService(users, parents, teachers, tx, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	registrationSvc := service.NewRegistrationService(service.RegistrationDeps{
		Tx:            tx,
		Requests:      registrations,
		Classes:       classes,
		Users:         users,
		Students:      students,
		Notifications: notifications,
		Mail:          mail,
		Metrics:       metrics,
	}, validate, logr)
	exportSvc := service.NewExportService(registrations, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	studentSvc := service.NewStudentService(students, classes, users, validate, logr)
	documentSvc := service.NewDocumentService(documents, fileStore, signer, validate, logr, service.DocumentServiceConfig{
		MaxFileSize:  cfg.Documents.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Documents.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})

	return &wiring{
		auth: authSvc,
		routes: router.Handlers{
			Auth:         handler.NewAuthHandler(authSvc),
			Registration: handler.NewRegistrationHandler(registrationSvc, exportSvc),
			Students:     handler.NewStudentHandler(studentSvc),
			People: handler.NewPeopleHandler(
				service.NewUserService(users),
				service.NewParentService(parents, students, logr),
				service.NewTeacherService(teachers, validate, logr),
			),
			Classes:    handler.NewClassHandler(service.NewClassService(classes, students, cacheSvc, validate, logr)),
			Attendance: handler.NewAttendanceHandler(service.NewAttendanceService(attendance, validate, logr)),
			Documents:  handler.NewDocumentHandler(documentSvc, cfg.Documents.MaxFileSizeBytes),
			Inbox: handler.NewInboxHandler(
				service.NewMessageService(messages, users, validate, logr),
				service.NewNotificationService(notifications),
			),
			SchoolUpdates: handler.NewSchoolUpdateHandler(service.NewSchoolUpdateService(updates, cacheSvc, validate, logr)),
			Ops:           handler.NewMetricsHandler(metrics, db),
		},
	}, nil
}

// newCache returns a disabled cache when Redis is off or unreachable.
func newCache(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) *service.CacheService {
	if !cfg.Cache.Enabled {
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		return service.NewCacheService(nil, metrics, cfg.Cache.TTL, logr, false)
	}
	return service.NewCacheService(repository.NewCacheRepository(client, "school-portal"), metrics, cfg.Cache.TTL, logr, true)
}

func countedMail(next jobs.Handler, metrics *service.MetricsService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		if err := next(ctx, job); err != nil {
			metrics.RecordMailJob("failed")
			return err
		}
		metrics.RecordMailJob("sent")
		return nil
	}
}
