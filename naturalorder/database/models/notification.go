package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationType string

const (
	NotifyTradeRequested     NotificationType = "trade_requested"
	NotifyTradeConfirmed     NotificationType = "trade_confirmed"
	NotifyRequestInvalidated NotificationType = "request_invalidated"
	NotifyTradeCompleted     NotificationType = "trade_completed"
	NotifyTradeCancelled     NotificationType = "trade_cancelled"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID             int64            `bun:"id,pk,autoincrement"`
	NotificationID string           `bun:"notification_id,notnull,unique"`
	UserID         string           `bun:"user_id,notnull"`
	Type           NotificationType `bun:"type,notnull"`
	MatchID        int64            `bun:"match_id,notnull"`
	Content        string           `bun:"content,type:text,notnull"`
	ReadAt         *time.Time       `bun:"read_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
