package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/uptrace/bun"
)

type CollectionRepository interface {
	Create(ctx context.Context, item *models.CollectionItem) error
	GetByID(ctx context.Context, id int64) (*models.CollectionItem, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.CollectionItem, error)
	SetPaused(ctx context.Context, id int64, userID string, paused bool) error
	SetPhotoKey(ctx context.Context, id int64, userID string, key string) error
	UpdatePrices(ctx context.Context, id int64, base, foil *float64) error
	Delete(ctx context.Context, id int64, userID string) error
}

type collectionRepository struct {
	db *bun.DB
}

func NewCollectionRepository(db *bun.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, item *models.CollectionItem) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create collection item: %w", err)
	}
	return nil
}

func (r *collectionRepository) GetByID(ctx context.Context, id int64) (*models.CollectionItem, error) {
	item := new(models.CollectionItem)
	err := r.db.NewSelect().
		Model(item).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("collection item not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get collection item: %w", err)
	}
	return item, nil
}

func (r *collectionRepository) GetByUserID(ctx context.Context, userID string) ([]*models.CollectionItem, error) {
	var items []*models.CollectionItem
	err := r.db.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return items, nil
}

func (r *collectionRepository) SetPaused(ctx context.Context, id int64, userID string, paused bool) error {
	res, err := r.db.NewUpdate().
		Model((*models.CollectionItem)(nil)).
		Set("paused = ?", paused).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update pause flag: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("collection item not found: %w", sql.ErrNoRows)
	}
	return nil
}

func (r *collectionRepository) SetPhotoKey(ctx context.Context, id int64, userID string, key string) error {
	res, err := r.db.NewUpdate().
		Model((*models.CollectionItem)(nil)).
		Set("photo_key = ?", key).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update photo key: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("collection item not found: %w", sql.ErrNoRows)
	}
	return nil
}

func (r *collectionRepository) UpdatePrices(ctx context.Context, id int64, base, foil *float64) error {
	if _, err := r.db.NewUpdate().
		Model((*models.CollectionItem)(nil)).
		Set("base_price = ?", base).
		Set("foil_price = ?", foil).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to update cached prices: %w", err)
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := r.db.NewDelete().
		Model((*models.CollectionItem)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete collection item: %w", err)
	}
	return nil
}
