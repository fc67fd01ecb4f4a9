package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"schoolpay_backend/internal/cache"
	"schoolpay_backend/internal/config"
	"schoolpay_backend/internal/database"
	"schoolpay_backend/internal/email"
	"schoolpay_backend/internal/feed"
	"schoolpay_backend/internal/handlers"
	"schoolpay_backend/internal/logger"
	"schoolpay_backend/internal/middleware"
	"schoolpay_backend/internal/models"
	"schoolpay_backend/internal/repositories"
	repoMessaging "schoolpay_backend/internal/repositories/messaging"
	"schoolpay_backend/internal/routes"
	"schoolpay_backend/internal/services"
	svcMessaging "schoolpay_backend/internal/services/messaging"
	"schoolpay_backend/internal/store"
	"schoolpay_backend/internal/validator"
	"schoolpay_backend/ws"
)

// feedCollections are the collections the realtime feed follows.
var feedCollections = []string{"device_alerts", "devices"}

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	router, changeFeed := SetupRouter(cfg, gormDB)
	changeFeed.Start()
	defer changeFeed.Stop()

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services, handlers and the realtime feed
// onto a gin engine. The caller starts the returned feed.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, *feed.Feed) {
	validator.RegisterCustomRules()

	// Change events ride NATS; without a broker the app still works, just
	// without realtime push.
	var publisher store.Publisher = store.NopPublisher{}
	if cfg.NATS.URL != "" {
		if nc, err := nats.Connect(cfg.NATS.URL); err == nil {
			publisher = store.NewNatsPublisher(nc)
			logger.Info("NATS connected", "url", cfg.NATS.URL)
		} else {
			logger.Warn("NATS unavailable, change events disabled", "error", err)
		}
	}

	views := cache.NewViewCache()

	threadRepo := repoMessaging.NewThreadRepository(gormDB, publisher)
	participantRepo := repoMessaging.NewParticipantRepository(gormDB, publisher)
	messageRepo := repoMessaging.NewMessageRepository(gormDB, publisher)
	attachmentRepo := repoMessaging.NewAttachmentRepository(gormDB, publisher)
	preferenceRepo := repositories.NewPreferenceRepository(gormDB, publisher)
	alertRepo := repositories.NewAlertRepository(gormDB, publisher)
	userRepo := repositories.NewUserRepository(gormDB, publisher)

	var emailProvider email.Provider
	if cfg.Email.SMTPHost != "" && cfg.Server.Env != "development" {
		emailProvider = email.NewSMTPProvider(cfg)
	} else {
		emailProvider = email.NopProvider{}
	}

	threadService := svcMessaging.NewThreadService(gormDB, threadRepo, participantRepo, messageRepo, userRepo, views)
	messageService := svcMessaging.NewMessageService(gormDB, threadRepo, participantRepo, messageRepo, attachmentRepo, views, cfg.Messaging.PageSize)
	preferenceService := services.NewPreferenceService(preferenceRepo, views)
	alertService := services.NewAlertService(alertRepo, views)
	authService := services.NewAuthService(userRepo, emailProvider)

	wsManager := ws.NewManager(func(userID string, category models.AlertCategory) bool {
		prefs, err := preferenceService.Get(context.Background(), userID)
		if err != nil {
			return true
		}
		return prefs.AllowsCategory(category)
	})
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	changeFeed := feed.New(cfg.NATS.URL, feedCollections, cfg.NATS.ReconnectBase, cfg.NATS.ReconnectMax)
	changeFeed.Subscribe([]string{"device_alerts"}, nil, func(event store.ChangeEvent) {
		views.Invalidate(cache.AlertListKey())
		if event.Kind != store.ChangeInsert {
			// Status changes: connected clients re-fetch the alert list.
			return
		}
		var alert models.DeviceAlert
		if err := json.Unmarshal(event.Payload, &alert); err != nil || alert.ID == "" {
			return
		}
		wsManager.BroadcastAlert(&alert)
	})

	appHandlers := &routes.AppHandlers{
		AuthHandler:       handlers.NewAuthHandler(authService),
		MessagingHandler:  handlers.NewMessagingHandler(threadService, messageService),
		PreferenceHandler: handlers.NewPreferenceHandler(preferenceService),
		AlertHandler:      handlers.NewAlertHandler(alertService),
	}

	if cfg.Server.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	routes.RegisterRoutes(router, appHandlers, wsHandler)
	return router, changeFeed
}
