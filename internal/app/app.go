package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"auxchat_backend/database"
	"auxchat_backend/internal/auth"
	"auxchat_backend/internal/cache"
	"auxchat_backend/internal/config"
	"auxchat_backend/internal/geo"
	"auxchat_backend/internal/handlers"
	"auxchat_backend/internal/imageprocessor"
	"auxchat_backend/internal/logger"
	"auxchat_backend/internal/middleware"
	"auxchat_backend/internal/payment"
	"auxchat_backend/internal/repositories"
	"auxchat_backend/internal/routes"
	"auxchat_backend/internal/services"
	"auxchat_backend/internal/sms"
	"auxchat_backend/internal/storage"
	"auxchat_backend/internal/validator"
	"auxchat_backend/internal/workers"
	"auxchat_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App - собранное приложение: роутер и фоновые компоненты
type App struct {
	Router    *gin.Engine
	Services  *services.ServiceContainer
	WSManager *ws.WebSocketManager

	cfg   *config.Config
	db    *gorm.DB
	repos *repositories.Repositories
	cache cache.Cache
}

// Run поднимает HTTP сервер и ждет SIGINT/SIGTERM
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Debug)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := New(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to build application", "error", err)
	}
	defer application.Close()

	application.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal("Server startup error", "error", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

// New собирает зависимости, сервисы, хэндлеры и роутер
func New(cfg *config.Config, gormDB *gorm.DB) (*App, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	storageInstance, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	smsProvider, err := sms.NewProvider(sms.Config{
		Provider: cfg.SMS.Provider,
		APIURL:   cfg.SMS.APIURL,
		APIKey:   cfg.SMS.APIKey,
		Sender:   cfg.SMS.Sender,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sms provider: %w", err)
	}
	logger.Info("SMS provider initialized", "provider", cfg.SMS.Provider)

	appCache := initializeCache(cfg)

	wsManager := ws.NewWebSocketManager(cfg.Realtime.SendBuffer)
	repos := repositories.NewRepositories()

	// 1. Инициализируем сервисы
	serviceContainer := services.NewServiceContainer(services.Dependencies{
		Config:    cfg,
		Repos:     repos,
		Tokens:    auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		SMS:       smsProvider,
		Cache:     appCache,
		Geocoder:  geo.NewCachedGeocoder(geo.NewNominatimClient(cfg.Geo.GeocoderURL, cfg.Geo.UserAgent), appCache, time.Duration(cfg.Geo.CacheTTL)*time.Minute),
		Storage:   storageInstance,
		Processor: imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.MaxImageSide, cfg.Upload.MaxImagePixels),
		Gateway:   payment.NewYooKassaGateway(cfg.Payment.ShopID, cfg.Payment.SecretKey, cfg.Payment.APIURL),
		Notifier:  wsManager,
	})

	// 2. Инициализируем хэндлеры
	baseHandler := handlers.NewBaseHandler(validator.New())
	appHandlers := handlers.NewAppHandlers(baseHandler, serviceContainer, sqlDB)

	authenticator := middleware.NewAuthenticator(
		auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		cfg.Auth.AllowUserIDHeader,
	)
	guards := handlers.Guards{
		Auth:         authenticator.AuthMiddleware(),
		OptionalAuth: authenticator.OptionalAuthMiddleware(),
		Admin:        middleware.AdminSecretMiddleware(cfg.Admin.Secret),
	}

	// 3. WebSocket: ping клиента продлевает онлайн
	wsHandler := ws.NewWebSocketHandler(wsManager, ws.HandlerConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		PingInterval:   cfg.PingInterval(),
		MaxMessageSize: int64(cfg.Realtime.MaxMessageSize),
		OnActivity: func(userID string) {
			if _, err := serviceContainer.UserService.UpdateActivity(gormDB, userID); err != nil {
				logger.Warn("Failed to update activity from websocket", "user_id", userID, "error", err)
			}
		},
	})

	// 4. Инициализируем Gin
	ginRouter := initializeGinRouter(cfg, gormDB)
	if cfg.Storage.Type == "local" {
		ginRouter.Static(localFilesPath(cfg.Storage.BaseURL), cfg.Storage.BasePath)
	}

	// 5. Маршруты
	routes.RegisterRoutes(ginRouter, appHandlers, guards, wsHandler)

	return &App{
		Router:    ginRouter,
		Services:  serviceContainer,
		WSManager: wsManager,
		cfg:       cfg,
		db:        gormDB,
		repos:     repos,
		cache:     appCache,
	}, nil
}

// Start запускает WebSocket менеджер и воркеры, все останавливается с ctx
func (a *App) Start(ctx context.Context) {
	go a.WSManager.Run(ctx)

	workers.NewSmsCleanupWorker(a.db, a.repos,
		time.Duration(a.cfg.Workers.SmsCleanupInterval)*time.Minute).Start(ctx)
	workers.NewPaymentExpiryWorker(a.db, a.repos,
		time.Duration(a.cfg.Workers.PaymentExpiryInterval)*time.Minute,
		time.Duration(a.cfg.Workers.PaymentPendingLifetime)*time.Hour).Start(ctx)
}

func (a *App) Close() {
	if err := a.cache.Close(); err != nil {
		logger.Warn("Failed to close cache", "error", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func initializeCache(cfg *config.Config) cache.Cache {
	if cfg.Redis.Addr == "" {
		logger.Info("Cache initialized", "type", "memory")
		return cache.NewMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// без Redis работаем, но коды и геокэш живут только в этом процессе
		logger.Error("Redis unavailable, falling back to memory cache", "error", err)
		return cache.NewMemoryCache()
	}
	logger.Info("Cache initialized", "type", "redis", "addr", cfg.Redis.Addr)
	return redisCache
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// localFilesPath - путь, под которым раздаются локальные файлы (из base_url)
func localFilesPath(baseURL string) string {
	path := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = "/" + strings.Trim(path, "/")
	if path == "/" {
		return "/files"
	}
	return path
}
