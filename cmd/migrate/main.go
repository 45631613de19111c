package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder"
	"github.com/naturalorder/naturalorder/naturalorder/database"
	"github.com/naturalorder/naturalorder/naturalorder/logger"
	"github.com/naturalorder/naturalorder/naturalorder/migration"
)

// Imports the MongoDB prototype's data into Postgres. Safe to re-run for
// users, which upsert; collections and wishlists expect empty tables.
func main() {
	slog.SetDefault(slog.New(logger.NewHandler("naturalorder-migrate")))

	path := flag.String("config", "config.toml", "path to config")
	mongoURI := flag.String("mongo-uri", "mongodb://localhost:27017", "legacy MongoDB URI")
	mongoDB := flag.String("mongo-db", "naturalorder", "legacy MongoDB database name")
	flag.Parse()

	cfg, err := naturalorder.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
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
		slog.Error("Database connection failed", slog.Any("error", err))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}

	importer, err := migration.NewImporter(ctx, db.BunDB(), *mongoURI, *mongoDB)
	if err != nil {
		slog.Error("Failed to connect to legacy database", slog.Any("error", err))
		os.Exit(-1)
	}

	if err := importer.Run(ctx); err != nil {
		slog.Error("Import failed", slog.Any("error", err))
		os.Exit(-1)
	}
}
