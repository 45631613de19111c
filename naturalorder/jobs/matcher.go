package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/naturalorder/naturalorder/naturalorder/catalog"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/database/repositories"
	"github.com/naturalorder/naturalorder/naturalorder/logger"
	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Matcher is the background matching-computation job: it enumerates user
// pairs, rebuilds candidate trades, and keeps persisted matches and their
// scores in step with collection and wishlist changes.
type Matcher struct {
	users       repositories.UserRepository
	collections repositories.CollectionRepository
	wishlists   repositories.WishlistRepository
	matches     repositories.MatchRepository
	catalog     *catalog.Client

	interval time.Duration
	workers  int
}

func NewMatcher(
	users repositories.UserRepository,
	collections repositories.CollectionRepository,
	wishlists repositories.WishlistRepository,
	matches repositories.MatchRepository,
	cat *catalog.Client,
	interval time.Duration,
	workers int,
) *Matcher {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Matcher{
		users:       users,
		collections: collections,
		wishlists:   wishlists,
		matches:     matches,
		catalog:     cat,
		interval:    interval,
		workers:     workers,
	}
}

// Start runs the job on its interval until the context is cancelled.
func (m *Matcher) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			if err := m.RunOnce(ctx); err != nil {
				slog.Error("Matching pass failed",
					slog.String("type", "match"),
					slog.Any("error", err))
				continue
			}
			logger.LogMatch("Matching pass completed",
				slog.Duration("took", time.Since(start)))

			if expired, err := m.matches.ExpireEscrows(ctx); err != nil {
				slog.Error("Escrow expiry failed",
					slog.String("type", "match"),
					slog.Any("error", err))
			} else if expired > 0 {
				slog.Info("Escrows expired",
					slog.String("type", "match"),
					slog.Int64("count", expired))
			}
		}
	}
}

// RunOnce performs one full matching pass over every user pair.
func (m *Matcher) RunOnce(ctx context.Context) error {
	ids, err := m.users.GetAllIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	sides := make(map[string]*matching.Side, len(ids))
	for _, id := range ids {
		side, err := m.buildSide(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to build side for %s: %w", id, err)
		}
		sides[id] = side
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := sides[ids[i]], sides[ids[j]]
			g.Go(func() error {
				return m.processPair(gctx, a, b)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, id := range ids {
		if err := m.users.TouchLastMatched(ctx, id); err != nil {
			slog.Warn("Failed to record matching pass for user",
				slog.String("type", "match"),
				slog.String("user_id", id),
				slog.Any("error", err))
		}
	}
	return nil
}

// buildSide assembles a user's matching input, refreshing cached market
// prices from the catalog where they are missing.
func (m *Matcher) buildSide(ctx context.Context, userID string) (*matching.Side, error) {
	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := m.collections.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	wants, err := m.wishlists.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	side := &matching.Side{
		UserID:    userID,
		Latitude:  user.Latitude,
		Longitude: user.Longitude,
	}

	for _, item := range items {
		if item.BasePrice == nil && item.FoilPrice == nil && m.catalog != nil {
			prices, err := m.catalog.Prices(ctx, item.PrintingID)
			if err != nil {
				slog.Warn("Price refresh failed",
					slog.String("type", "match"),
					slog.String("printing_id", item.PrintingID),
					slog.Any("error", err))
			} else if prices.Base != nil || prices.Foil != nil {
				item.BasePrice = prices.Base
				item.FoilPrice = prices.Foil
				if err := m.collections.UpdatePrices(ctx, item.ID, prices.Base, prices.Foil); err != nil {
					slog.Warn("Price cache write failed",
						slog.String("type", "match"),
						slog.Any("error", err))
				}
			}
		}

		side.Offers = append(side.Offers, matching.Offer{
			ItemID:       item.ID,
			OracleID:     item.OracleID,
			PrintingID:   item.PrintingID,
			Name:         item.Name,
			Condition:    item.Condition,
			Foil:         item.Foil,
			Paused:       item.Paused,
			Mode:         item.PriceMode,
			PricePercent: item.PricePercent,
			PriceFixed:   item.PriceFixed,
			BasePrice:    item.BasePrice,
			FoilPrice:    item.FoilPrice,
		})
	}

	for _, w := range wants {
		side.Wants = append(side.Wants, matching.Want{
			ItemID:       w.ID,
			OracleID:     w.OracleID,
			MinCondition: w.MinCondition,
			FoilPref:     w.FoilPref,
			EditionPref:  w.EditionPref,
			Printings:    w.PrintingSet(),
		})
	}
	return side, nil
}

// processPair reconciles the persisted match for one user pair with the
// freshly built candidate. Matches with a pending request or beyond are
// left untouched: the parties are already negotiating on known contents.
func (m *Matcher) processPair(ctx context.Context, a, b *matching.Side) error {
	candidate, viable := matching.Build(*a, *b)

	existing, err := m.matches.GetBetweenUsers(ctx, a.UserID, b.UserID)
	if err != nil {
		return err
	}

	if existing == nil {
		if !viable {
			return nil
		}
		match := &models.Match{
			MatchID: uuid.NewString(),
			UserAID: a.UserID,
			UserBID: b.UserID,
			Status:  models.MatchActive,
			Type:    candidate.Type,
			Score:   candidate.Score,
		}
		if err := m.matches.Create(ctx, match, cardsFromPicks(candidate.Cards)); err != nil {
			return err
		}
		slog.Info("Match created",
			slog.String("type", "match"),
			slog.String("match_id", match.MatchID),
			slog.String("match_type", string(candidate.Type)),
			slog.Float64("score", candidate.Score))
		return nil
	}

	if existing.Status == models.MatchRequested || existing.Status == models.MatchConfirmed || existing.Status.Terminal() {
		return nil
	}

	if !viable {
		// No algorithmic basis remains; drop the derived cards and let the
		// rescore reflect whatever custom cards the users added.
		if err := m.matches.ReplaceDerivedCards(ctx, existing.ID, nil); err != nil {
			return err
		}
	} else {
		if err := m.matches.ReplaceDerivedCards(ctx, existing.ID, cardsFromPicks(candidate.Cards)); err != nil {
			return err
		}
	}

	score, err := m.Rescore(ctx, existing)
	if err != nil {
		return err
	}
	return m.matches.SetScore(ctx, existing.ID, score)
}

func cardsFromPicks(picks []matching.CardPick) []*models.MatchCard {
	cards := make([]*models.MatchCard, 0, len(picks))
	for _, p := range picks {
		offerID := p.OfferItemID
		wantID := p.WantItemID
		cards = append(cards, &models.MatchCard{
			CollectionItemID: &offerID,
			WishlistItemID:   &wantID,
			OracleID:         p.OracleID,
			PrintingID:       p.PrintingID,
			Name:             p.Name,
			Foil:             p.Foil,
			OwnerID:          p.OwnerID,
			WantedBy:         p.WantedBy,
			AskingPrice:      p.AskingPrice,
			PriceWarning:     p.PriceWarning,
		})
	}
	return cards
}

// Rescore recomputes a match's score from its current cards, honoring
// exclusions and custom additions. Implements the lifecycle's Rescorer.
func (m *Matcher) Rescore(ctx context.Context, match *models.Match) (float64, error) {
	cards, err := m.matches.GetCards(ctx, match.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load cards for rescore: %w", err)
	}

	var aPicks, bPicks []matching.CardPick
	for _, c := range cards {
		if c.Excluded {
			continue
		}
		pick := matching.CardPick{
			OracleID:     c.OracleID,
			PrintingID:   c.PrintingID,
			Name:         c.Name,
			OwnerID:      c.OwnerID,
			WantedBy:     c.WantedBy,
			Foil:         c.Foil,
			AskingPrice:  c.AskingPrice,
			PriceWarning: c.PriceWarning,
		}
		if c.AskingPrice != nil && m.catalog != nil && c.PrintingID != "" {
			if prices, err := m.catalog.Prices(ctx, c.PrintingID); err == nil {
				if c.Foil {
					pick.MarketPrice = prices.Foil
				} else {
					pick.MarketPrice = prices.Base
				}
			}
		}
		if c.WantedBy == match.UserAID {
			aPicks = append(aPicks, pick)
		} else {
			bPicks = append(bPicks, pick)
		}
	}

	matchType := match.Type
	switch {
	case len(aPicks) > 0 && len(bPicks) > 0:
		matchType = matching.TwoWay
	case len(aPicks) > 0:
		matchType = matching.OneWayBuy
	case len(bPicks) > 0:
		matchType = matching.OneWaySell
	}

	distance, err := m.pairDistance(ctx, match.UserAID, match.UserBID)
	if err != nil {
		return 0, err
	}

	return matching.Score(matching.Signals(matchType, aPicks, bPicks, distance)), nil
}

func (m *Matcher) pairDistance(ctx context.Context, aID, bID string) (*float64, error) {
	a, err := m.users.GetByID(ctx, aID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", aID, err)
	}
	b, err := m.users.GetByID(ctx, bID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", bID, err)
	}
	if !a.HasLocation() || !b.HasLocation() {
		return nil, nil
	}
	d := matching.Distance(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	return &d, nil
}
