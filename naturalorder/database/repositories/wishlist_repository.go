package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/uptrace/bun"
)

type WishlistRepository interface {
	Create(ctx context.Context, item *models.WishlistItem) error
	GetByID(ctx context.Context, id int64) (*models.WishlistItem, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.WishlistItem, error)
	Update(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, id int64, userID string) error
}

type wishlistRepository struct {
	db *bun.DB
}

func NewWishlistRepository(db *bun.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Create(ctx context.Context, item *models.WishlistItem) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) GetByID(ctx context.Context, id int64) (*models.WishlistItem, error) {
	item := new(models.WishlistItem)
	err := r.db.NewSelect().
		Model(item).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("wishlist item not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return item, nil
}

func (r *wishlistRepository) GetByUserID(ctx context.Context, userID string) ([]*models.WishlistItem, error) {
	var items []*models.WishlistItem
	err := r.db.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Order("name ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return items, nil
}

func (r *wishlistRepository) Update(ctx context.Context, item *models.WishlistItem) error {
	item.UpdatedAt = time.Now()
	res, err := r.db.NewUpdate().
		Model(item).
		Column("min_condition", "foil_pref", "edition_pref", "printings", "updated_at").
		Where("id = ? AND user_id = ?", item.ID, item.UserID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update wishlist item: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("wishlist item not found: %w", sql.ErrNoRows)
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, id int64, userID string) error {
	if _, err := r.db.NewDelete().
		Model((*models.WishlistItem)(nil)).
		Where("id = ? AND user_id = ?", id, userID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}
