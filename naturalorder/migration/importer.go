package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchSize = 500

// Importer moves data from the MongoDB prototype of Natural Order into
// Postgres. One-shot: run from cmd/migrate against a legacy dump.
type Importer struct {
	pg      *bun.DB
	mongoDB *mongo.Database

	stats struct {
		users       int
		collections int
		wishlists   int
	}
}

func NewImporter(ctx context.Context, pg *bun.DB, mongoURI, dbName string) (*Importer, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo unreachable: %w", err)
	}
	return &Importer{pg: pg, mongoDB: client.Database(dbName)}, nil
}

type legacyUser struct {
	ID        string   `bson:"_id"`
	Username  string   `bson:"username"`
	Email     string   `bson:"email"`
	Latitude  *float64 `bson:"lat"`
	Longitude *float64 `bson:"lon"`
}

type legacyCollectionItem struct {
	UserID       string   `bson:"user_id"`
	OracleID     string   `bson:"oracle_id"`
	PrintingID   string   `bson:"scryfall_id"`
	Name         string   `bson:"name"`
	SetCode      string   `bson:"set"`
	Condition    string   `bson:"condition"`
	Foil         bool     `bson:"foil"`
	PriceMode    string   `bson:"price_mode"`
	PricePercent float64  `bson:"price_percent"`
	PriceFixed   *float64 `bson:"price_fixed"`
	Paused       bool     `bson:"paused"`
}

type legacyWishlistItem struct {
	UserID       string   `bson:"user_id"`
	OracleID     string   `bson:"oracle_id"`
	Name         string   `bson:"name"`
	MinCondition string   `bson:"min_condition"`
	FoilPref     string   `bson:"foil_pref"`
	EditionPref  string   `bson:"edition_pref"`
	Printings    []string `bson:"printings"`
}

// Run imports users, collections and wishlists, in that order.
func (i *Importer) Run(ctx context.Context) error {
	start := time.Now()

	if err := i.importUsers(ctx); err != nil {
		return fmt.Errorf("user import failed: %w", err)
	}
	if err := i.importCollections(ctx); err != nil {
		return fmt.Errorf("collection import failed: %w", err)
	}
	if err := i.importWishlists(ctx); err != nil {
		return fmt.Errorf("wishlist import failed: %w", err)
	}

	slog.Info("Legacy import completed",
		slog.String("type", "db"),
		slog.Int("users", i.stats.users),
		slog.Int("collection_items", i.stats.collections),
		slog.Int("wishlist_items", i.stats.wishlists),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (i *Importer) importUsers(ctx context.Context) error {
	cursor, err := i.mongoDB.Collection("users").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var batch []*models.User
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		_, err := i.pg.NewInsert().
			Model(&batch).
			On("CONFLICT (id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert users: %w", err)
		}
		i.stats.users += len(batch)
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		var u legacyUser
		if err := cursor.Decode(&u); err != nil {
			return fmt.Errorf("failed to decode user: %w", err)
		}
		batch = append(batch, &models.User{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Latitude:  u.Latitude,
			Longitude: u.Longitude,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("user cursor failed: %w", err)
	}
	return flush()
}

func (i *Importer) importCollections(ctx context.Context) error {
	cursor, err := i.mongoDB.Collection("collection_items").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query collection items: %w", err)
	}
	defer cursor.Close(ctx)

	var batch []*models.CollectionItem
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := i.pg.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert collection items: %w", err)
		}
		i.stats.collections += len(batch)
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		var item legacyCollectionItem
		if err := cursor.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode collection item: %w", err)
		}
		batch = append(batch, &models.CollectionItem{
			UserID:       item.UserID,
			OracleID:     item.OracleID,
			PrintingID:   item.PrintingID,
			Name:         item.Name,
			SetCode:      item.SetCode,
			Condition:    normalizeCondition(item.Condition),
			Foil:         item.Foil,
			PriceMode:    normalizePriceMode(item.PriceMode),
			PricePercent: item.PricePercent,
			PriceFixed:   item.PriceFixed,
			Paused:       item.Paused,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("collection cursor failed: %w", err)
	}
	return flush()
}

func (i *Importer) importWishlists(ctx context.Context) error {
	cursor, err := i.mongoDB.Collection("wishlist_items").Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer cursor.Close(ctx)

	var batch []*models.WishlistItem
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := i.pg.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert wishlist items: %w", err)
		}
		i.stats.wishlists += len(batch)
		batch = batch[:0]
		return nil
	}

	for cursor.Next(ctx) {
		var item legacyWishlistItem
		if err := cursor.Decode(&item); err != nil {
			return fmt.Errorf("failed to decode wishlist item: %w", err)
		}
		batch = append(batch, &models.WishlistItem{
			UserID:       item.UserID,
			OracleID:     item.OracleID,
			Name:         item.Name,
			MinCondition: normalizeCondition(item.MinCondition),
			FoilPref:     matching.FoilPreference(item.FoilPref),
			EditionPref:  matching.EditionPreference(item.EditionPref),
			Printings:    item.Printings,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("wishlist cursor failed: %w", err)
	}
	return flush()
}

// normalizeCondition maps legacy condition labels onto the fixed scale.
// Unknown labels fall back to DMG so nothing imports better than it is.
func normalizeCondition(s string) matching.Condition {
	switch matching.Condition(s) {
	case matching.ConditionNM, matching.ConditionLP, matching.ConditionMP,
		matching.ConditionHP, matching.ConditionDMG:
		return matching.Condition(s)
	}
	switch s {
	case "near_mint", "mint":
		return matching.ConditionNM
	case "lightly_played", "excellent", "good":
		return matching.ConditionLP
	case "moderately_played", "played":
		return matching.ConditionMP
	case "heavily_played", "poor":
		return matching.ConditionHP
	}
	return matching.ConditionDMG
}

func normalizePriceMode(s string) matching.PriceMode {
	if matching.PriceMode(s) == matching.PriceFixed {
		return matching.PriceFixed
	}
	return matching.PricePercentage
}
