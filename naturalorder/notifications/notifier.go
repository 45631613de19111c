package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/database/repositories"
)

// Service records notifications and attempts delivery. Every failure here is
// logged and swallowed: a lifecycle transition must never fail because a
// notification could not be written or pushed.
type Service struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
	push  *PushClient
	feed  *Feed
}

func NewService(repo repositories.NotificationRepository, users repositories.UserRepository, push *PushClient, feed *Feed) *Service {
	return &Service{
		repo:  repo,
		users: users,
		push:  push,
		feed:  feed,
	}
}

func (s *Service) Notify(ctx context.Context, userID string, typ models.NotificationType, match *models.Match, content string) {
	if userID == "" {
		return
	}

	n := &models.Notification{
		NotificationID: uuid.NewString(),
		UserID:         userID,
		Type:           typ,
		MatchID:        match.ID,
		Content:        content,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		slog.Warn("Notification record failed",
			slog.String("type", "notify"),
			slog.String("user_id", userID),
			slog.String("notification_type", string(typ)),
			slog.Any("error", err))
	}

	go s.deliver(userID, typ, match, content)

	if typ == models.NotifyTradeConfirmed && s.feed != nil {
		go s.feed.PostTradeConfirmed(match)
	}
}

// deliver pushes to the user's device off the request path.
func (s *Service) deliver(userID string, typ models.NotificationType, match *models.Match, content string) {
	if s.push == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("Push skipped: user lookup failed",
			slog.String("type", "notify"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return
	}
	if user.PushToken == "" {
		return
	}

	if err := s.push.Send(ctx, user.PushToken, string(typ), content, match.MatchID); err != nil {
		slog.Warn("Push delivery failed",
			slog.String("type", "notify"),
			slog.String("user_id", userID),
			slog.String("notification_type", string(typ)),
			slog.Any("error", err))
	}
}
