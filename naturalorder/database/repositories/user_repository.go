package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/uptrace/bun"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetAllIDs(ctx context.Context) ([]string, error)
	UpdateLocation(ctx context.Context, id string, lat, lon *float64) error
	SetPushToken(ctx context.Context, id string, token string) error
	TouchLastMatched(ctx context.Context, id string) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.User)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}

func (r *userRepository) UpdateLocation(ctx context.Context, id string, lat, lon *float64) error {
	if _, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("latitude = ?", lat).
		Set("longitude = ?", lon).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return nil
}

func (r *userRepository) SetPushToken(ctx context.Context, id string, token string) error {
	if _, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("push_token = ?", token).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return nil
}

func (r *userRepository) TouchLastMatched(ctx context.Context, id string) error {
	if _, err := r.db.NewUpdate().
		Model((*models.User)(nil)).
		Set("last_matched = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to touch last matched: %w", err)
	}
	return nil
}
