package router

import (
	"context"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"firebase.google.com/go/v4/messaging"
	"github.com/vidora/backend/internal/handlers"
	"github.com/vidora/backend/internal/middleware"
	"github.com/vidora/backend/internal/models"
	"github.com/vidora/backend/internal/notify"
	"github.com/vidora/backend/internal/repositories"
	"github.com/vidora/backend/internal/socket"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
}

// verifyCredential adapts the JWT middleware's verifier to the socket handshake
func verifyCredential(token string) (uint, error) {
	claims, err := middleware.VerifyToken(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// SetupRoutes wires repositories, the realtime layer, the dispatcher and
// all HTTP/WebSocket routes. Returns the dispatcher so domain services can
// emit notifications.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, fcmClient *messaging.Client, mongoDatabase string, adminUserID uint) (*notify.Dispatcher, error) {
	// AutoMigrate the relational directory models
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.Follow{},
	); err != nil {
		return nil, err
	}
	log.Info().Msg("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	mongoDB := mgClient.Database(mongoDatabase)
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	channelRepo := repositories.NewPostgresChannelRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	adminNotificationRepo := repositories.NewMongoAdminNotificationRepository(mongoDB)
	deviceTokenRepo := repositories.NewMongoDeviceTokenRepository(mongoDB)

	// MongoDB owns retention via TTL indexes; create them up front
	ctx := context.Background()
	for _, ensure := range []func(context.Context) error{
		notificationRepo.EnsureIndexes,
		adminNotificationRepo.EnsureIndexes,
		deviceTokenRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return nil, err
		}
	}
	log.Info().Msg("MongoDB indexes ensured")

	// --- Realtime layer ---
	hub := socket.NewHub(verifyCredential)
	realtime := socket.NewRealtimeMap()

	wsHandler := handlers.NewWSHandler(hub, realtime)
	wsHandler.RegisterWSRoutes(e)
	log.Info().Msg("websocket routes configured")

	// --- Notification dispatcher ---
	gateway := notify.NewFCMGateway(fcmClient, deviceTokenRepo)
	dispatcher := notify.NewDispatcher(
		notificationRepo,
		adminNotificationRepo,
		userRepo,
		channelRepo,
		followRepo,
		hub,
		gateway,
		adminUserID,
	)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, deviceTokenRepo, dispatcher)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Info().Msg("notification routes configured")

	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnly())

	adminNotificationHandler := handlers.NewAdminNotificationHandler(adminNotificationRepo)
	adminNotificationHandler.RegisterAdminNotificationRoutes(admin)
	log.Info().Msg("admin notification routes configured")

	return dispatcher, nil
}
