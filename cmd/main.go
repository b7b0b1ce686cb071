package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"visa-advisory-portal/config"
	"visa-advisory-portal/docs"
	"visa-advisory-portal/internal/handler"
	"visa-advisory-portal/internal/logger"
	"visa-advisory-portal/internal/repository"
	"visa-advisory-portal/internal/security"
	"visa-advisory-portal/internal/service"
)

type handlers struct {
	auth       *handler.AuthenticationHandler
	categories *handler.CategoryHandler
	documents  *handler.DocumentHandler
	forms      *handler.FormHandler
	clients    *handler.ClientHandler
	activities *handler.ActivityHandler
	health     *handler.HealthHandler
}

// @title Visa advisory portal
// @version 1.0
// @description REST API for client onboarding, document checklists and intake forms

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		zap.L().Fatal("load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		zap.L().Fatal("build logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}()

	if cfg.DatabaseConfig.Migrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("migrate database", zap.Error(err))
		}
	}

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatal("connect redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("close redis", zap.Error(err))
		}
	}()

	s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
	if err != nil {
		log.Fatal("create s3 service", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	jwtRepo := repository.NewJWTRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	clientRepo := repository.NewClientRepository(db)
	formRepo := repository.NewFormRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.TTL.CacheDuration())

	jwtService := security.NewJWTService(&cfg.JWT)
	metrics := service.NewMetricsService()
	activityService := service.NewActivityService(activityRepo)
	categoryService := service.NewCategoryService(categoryRepo, cacheRepo, metrics)
	authService := service.NewAuthenticationService(jwtRepo, jwtService, userRepo, clientRepo, activityService)
	docService := service.NewDocumentService(docRepo, clientRepo, cacheRepo, categoryService, s3Service, activityService, metrics, cfg.TTL.PresignedDuration())
	formService := service.NewFormService(formRepo, activityService)
	clientService := service.NewClientService(clientRepo, activityService)
	exportService := service.NewExportService(clientService)

	if err := authService.EnsureAdmin(config.WithDatabase(ctx, db), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal("bootstrap admin", zap.Error(err))
	}

	h := handlers{
		auth:       handler.NewAuthenticationHandler(authService),
		categories: handler.NewCategoryHandler(categoryService),
		documents:  handler.NewDocumentHandler(docService, cfg.Upload.MaxFileSize),
		forms:      handler.NewFormHandler(formService),
		clients:    handler.NewClientHandler(clientService, exportService),
		activities: handler.NewActivityHandler(activityService),
		health: handler.NewHealthHandler(map[string]handler.Pinger{
			"database": db,
			"redis":    handler.PingerFunc(redisClient.Ping),
		}),
	}

	srv, router := config.SetupServer(cfg)
	docs.SwaggerInfo.BasePath = cfg.Server.BasePath

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.Timeout()))
	router.Use(config.DBMiddleware(db))

	router.Get("/healthz", h.health.Healthz)
	router.Handle("/metrics", metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	authMiddleware := security.JWTMiddleware(jwtService, jwtRepo)
	router.Route(cfg.Server.BasePath, func(r chi.Router) {
		setupAuthRoutes(r, h, authMiddleware)
		setupClientRoutes(r, h, authMiddleware)
		setupAdminRoutes(r, h, authMiddleware)
	})

	runServer(ctx, srv, cfg.Server.Shutdown())
}

func setupAuthRoutes(r chi.Router, h handlers, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/register", h.auth.Register)
	r.Post("/login", h.auth.Login)
	r.Post("/refresh", h.auth.RefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/logout", h.auth.Logout)
		r.Get("/me", h.auth.Me)
	})
}

func setupClientRoutes(r chi.Router, h handlers, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/categories", h.categories.ListCategoryNames)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.documents.ListDocuments)
			r.Post("/", h.documents.UploadDocument)
			r.Get("/{id}", h.documents.DownloadDocument)
			r.Delete("/{id}", h.documents.DeleteDocument)
		})

		r.Get("/forms/me", h.forms.MyForm)
		r.Post("/forms", h.forms.SaveForm)

		r.Get("/clients/me/profile", h.clients.Profile)
		r.Put("/clients/me/profile", h.clients.UpdateProfile)
	})
}

func setupAdminRoutes(r chi.Router, h handlers, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(security.RequireAdmin)

		r.Route("/documents", func(r chi.Router) {
			r.Get("/", h.documents.AdminListDocuments)
			r.Patch("/{id}", h.documents.ReviewDocument)
			r.Put("/{id}", h.documents.ReviewDocument)
			r.Get("/{id}/download", h.documents.DownloadDocument)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.clients.AdminListClients)
			r.Get("/{id}", h.clients.AdminGetClient)
			r.Put("/{id}", h.clients.AdminUpdateClient)
			r.Get("/{id}/documents", h.documents.AdminClientDocuments)
		})

		r.Get("/forms", h.forms.AdminListForms)
		r.Get("/forms/{id}", h.forms.AdminGetForm)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.categories.AdminListCategories)
			r.Post("/", h.categories.CreateCategory)
			r.Put("/{id}", h.categories.UpdateCategory)
			r.Delete("/{id}", h.categories.DeleteCategory)
		})

		r.Get("/activities", h.activities.ListActivities)
		r.Get("/activities/types", h.activities.ListActivityTypes)
		r.Get("/stats", h.clients.Stats)
		r.Get("/export/dashboard", h.clients.ExportDashboardCSV)
		r.Get("/export/dashboard.pdf", h.clients.ExportDashboardPDF)
	})
}

func runServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) {
	serverErrors := make(chan error, 1)
	go func() {
		zap.L().Info("server started", zap.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server error", zap.Error(err))
		}
	case sig := <-signalChannel:
		zap.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, shutdownTimeout)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	} else {
		zap.L().Info("server stopped")
	}
}
