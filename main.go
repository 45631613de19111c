package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder"
	"github.com/naturalorder/naturalorder/naturalorder/catalog"
	"github.com/naturalorder/naturalorder/naturalorder/database"
	"github.com/naturalorder/naturalorder/naturalorder/database/repositories"
	"github.com/naturalorder/naturalorder/naturalorder/jobs"
	"github.com/naturalorder/naturalorder/naturalorder/logger"
	"github.com/naturalorder/naturalorder/naturalorder/notifications"
	"github.com/naturalorder/naturalorder/naturalorder/server"
	"github.com/naturalorder/naturalorder/naturalorder/storage"
	"github.com/naturalorder/naturalorder/naturalorder/trade"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler("naturalorder")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Natural Order",
		slog.String("version", version),
		slog.String("commit", commit))

	path := flag.String("config", "config.toml", "path to config")
	runMatcherOnce := flag.Bool("match-once", false, "run a single matching pass and exit")
	flag.Parse()

	cfg, err := naturalorder.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	userRepo := repositories.NewUserRepository(db.BunDB())
	collectionRepo := repositories.NewCollectionRepository(db.BunDB())
	wishlistRepo := repositories.NewWishlistRepository(db.BunDB())
	matchRepo := repositories.NewMatchRepository(db.BunDB())
	notificationRepo := repositories.NewNotificationRepository(db.BunDB())

	catalogClient, err := catalog.NewClient(
		cfg.Catalog.BaseURL,
		cfg.Catalog.CacheSize,
		time.Duration(cfg.Catalog.TimeoutMS)*time.Millisecond,
	)
	if err != nil {
		slog.Error("Failed to initialize catalog client", slog.Any("error", err))
		os.Exit(-1)
	}

	var photoService *storage.PhotoService
	if cfg.Spaces.Key != "" {
		photoService, err = storage.NewPhotoService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.PhotoRoot,
		)
		if err != nil {
			slog.Error("Failed to initialize photo storage", slog.Any("error", err))
			os.Exit(-1)
		}
	} else {
		slog.Warn("Photo storage not configured, condition photos disabled")
	}

	var pushClient *notifications.PushClient
	if cfg.Push.GatewayURL != "" {
		pushClient = notifications.NewPushClient(cfg.Push.GatewayURL, cfg.Push.AuthToken)
	}
	feed := notifications.NewFeed(cfg.Feed.WebhookID, cfg.Feed.WebhookToken)
	notifier := notifications.NewService(notificationRepo, userRepo, pushClient, feed)

	interval := time.Duration(cfg.Matcher.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	matcher := jobs.NewMatcher(userRepo, collectionRepo, wishlistRepo, matchRepo,
		catalogClient, interval, cfg.Matcher.Workers)

	if *runMatcherOnce {
		if err := matcher.RunOnce(ctx); err != nil {
			slog.Error("Matching pass failed", slog.Any("error", err))
			os.Exit(-1)
		}
		slog.Info("Matching pass completed")
		return
	}

	tradeService := trade.NewService(matchRepo, notifier, matcher)

	app := server.NewApp(
		cfg.Server,
		tradeService,
		userRepo,
		collectionRepo,
		wishlistRepo,
		matchRepo,
		notificationRepo,
		catalogClient,
		photoService,
	)

	jobCtx, stopJobs := context.WithCancel(context.Background())
	go matcher.Start(jobCtx)

	go func() {
		if err := app.Start(); err != nil {
			slog.Error("HTTP server stopped", slog.Any("error", err))
			stopJobs()
		}
	}()

	logger.LogSystem("Natural Order is now running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s

	slog.Info("Shutting down...")
	stopJobs()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.LogError("HTTP server shutdown failed", err)
	}
}
