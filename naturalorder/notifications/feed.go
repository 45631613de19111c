package notifications

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/webhook"
	"github.com/disgoorg/snowflake/v2"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
)

// Feed posts trade activity to the community Discord channel through a
// webhook. Best effort only.
type Feed struct {
	client webhook.Client
}

func NewFeed(webhookID snowflake.ID, token string) *Feed {
	if webhookID == 0 || token == "" {
		return nil
	}
	return &Feed{client: webhook.New(webhookID, token)}
}

func (f *Feed) PostTradeConfirmed(match *models.Match) {
	embed := discord.NewEmbedBuilder().
		SetTitle("Trade confirmed").
		SetDescriptionf("A %s trade was just confirmed. %d cards are on the move.",
			match.Type, len(match.Cards)).
		SetColor(0x2b2d31).
		Build()

	_, err := f.client.CreateMessage(discord.NewWebhookMessageCreateBuilder().
		SetUsername("Natural Order").
		SetEmbeds(embed).
		Build())
	if err != nil {
		slog.Warn("Trade feed post failed",
			slog.String("type", "notify"),
			slog.String("match_id", match.MatchID),
			slog.Any("error", fmt.Errorf("webhook: %w", err)))
	}
}
