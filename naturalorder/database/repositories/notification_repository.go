package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/uptrace/bun"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetUnread(ctx context.Context, userID string) ([]*models.Notification, error)
	MarkRead(ctx context.Context, notificationID string, userID string) error
}

type notificationRepository struct {
	db *bun.DB
}

func NewNotificationRepository(db *bun.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now()
	if _, err := r.db.NewInsert().Model(n).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) GetUnread(ctx context.Context, userID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.NewSelect().
		Model(&notifications).
		Where("user_id = ? AND read_at IS NULL", userID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID string, userID string) error {
	if _, err := r.db.NewUpdate().
		Model((*models.Notification)(nil)).
		Set("read_at = ?", time.Now()).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
