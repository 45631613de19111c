package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/naturalorder/naturalorder/naturalorder"
	"github.com/naturalorder/naturalorder/naturalorder/catalog"
	"github.com/naturalorder/naturalorder/naturalorder/database/repositories"
	"github.com/naturalorder/naturalorder/naturalorder/storage"
	"github.com/naturalorder/naturalorder/naturalorder/trade"
)

// App is the HTTP surface of the marketplace. All state mutation goes
// through the trade service; handlers only translate between HTTP and it.
type App struct {
	cfg    naturalorder.ServerConfig
	fiber  *fiber.App
	trades *trade.Service

	users         repositories.UserRepository
	collections   repositories.CollectionRepository
	wishlists     repositories.WishlistRepository
	matches       repositories.MatchRepository
	notifications repositories.NotificationRepository

	catalog *catalog.Client
	photos  *storage.PhotoService
}

func NewApp(
	cfg naturalorder.ServerConfig,
	trades *trade.Service,
	users repositories.UserRepository,
	collections repositories.CollectionRepository,
	wishlists repositories.WishlistRepository,
	matches repositories.MatchRepository,
	notificationRepo repositories.NotificationRepository,
	cat *catalog.Client,
	photos *storage.PhotoService,
) *App {
	app := &App{
		cfg:           cfg,
		trades:        trades,
		users:         users,
		collections:   collections,
		wishlists:     wishlists,
		matches:       matches,
		notifications: notificationRepo,
		catalog:       cat,
		photos:        photos,
	}

	app.fiber = fiber.New(fiber.Config{
		AppName:      "naturalorder",
		ErrorHandler: errorHandler,
		BodyLimit:    8 * 1024 * 1024, // condition photos
	})
	app.routes()
	return app
}

func (a *App) routes() {
	f := a.fiber

	f.Use(RequestLogger())
	f.Use(CORS(a.cfg.AllowedOrigins))
	if a.cfg.RateLimit > 0 {
		f.Use(RateLimit(a.cfg.RateLimit, time.Minute))
	}

	f.Get("/health", a.handleHealth)

	api := f.Group("/api/v1", RequireUser())

	api.Get("/matches", a.handleListMatches)
	api.Get("/matches/:matchID", a.handleGetMatch)
	api.Post("/matches/:matchID/contact", a.lifecycleHandler(a.trades.Contact))
	api.Post("/matches/:matchID/dismiss", a.lifecycleHandler(a.trades.Dismiss))
	api.Post("/matches/:matchID/restore", a.lifecycleHandler(a.trades.Restore))
	api.Post("/matches/:matchID/request", a.lifecycleHandler(a.trades.Request))
	api.Post("/matches/:matchID/confirm", a.lifecycleHandler(a.trades.Confirm))
	api.Post("/matches/:matchID/complete", a.lifecycleHandler(a.trades.Complete))
	api.Post("/matches/:matchID/cancel", a.lifecycleHandler(a.trades.Cancel))

	api.Post("/matches/:matchID/cards", a.handleAddCustomCard)
	api.Delete("/matches/:matchID/cards/:cardID", a.handleDeleteCustomCard)
	api.Put("/matches/:matchID/cards/:cardID/excluded", a.handleExcludeCard)

	api.Get("/collection", a.handleListCollection)
	api.Post("/collection", a.handleAddCollectionItem)
	api.Delete("/collection/:itemID", a.handleDeleteCollectionItem)
	api.Put("/collection/:itemID/paused", a.handlePauseCollectionItem)
	api.Put("/collection/:itemID/photo", a.handleUploadPhoto)
	api.Delete("/collection/:itemID/photo", a.handleDeletePhoto)

	api.Get("/wishlist", a.handleListWishlist)
	api.Post("/wishlist", a.handleAddWishlistItem)
	api.Put("/wishlist/:itemID", a.handleUpdateWishlistItem)
	api.Delete("/wishlist/:itemID", a.handleDeleteWishlistItem)

	api.Get("/cards/search", a.handleCardSearch)
	api.Get("/cards/autocomplete", a.handleCardAutocomplete)

	api.Get("/notifications", a.handleListNotifications)
	api.Post("/notifications/:notificationID/read", a.handleMarkNotificationRead)

	api.Put("/me/location", a.handleUpdateLocation)
	api.Put("/me/push-token", a.handleSetPushToken)
}

// Start blocks serving HTTP until Shutdown is called.
func (a *App) Start() error {
	slog.Info("HTTP server starting",
		slog.String("type", "api"),
		slog.String("addr", a.cfg.Addr))
	return a.fiber.Listen(a.cfg.Addr)
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.fiber.ShutdownWithContext(ctx)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	if err := a.matches.DB().PingContext(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).
			JSON(fiber.Map{"status": "degraded", "database": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
