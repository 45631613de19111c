package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/trade"
	"github.com/uptrace/bun"
)

type MatchRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, match *models.Match, cards []*models.MatchCard) error
	GetByMatchID(ctx context.Context, matchID string) (*models.Match, error)
	GetWithCards(ctx context.Context, matchID string) (*models.Match, error)
	GetBetweenUsers(ctx context.Context, userAID, userBID string) (*models.Match, error)
	GetUserMatches(ctx context.Context, userID string, statuses ...models.MatchStatus) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, m *models.Match, prev models.MatchStatus) error
	GetCard(ctx context.Context, cardID int64) (*models.MatchCard, error)
	GetCards(ctx context.Context, matchID int64) ([]*models.MatchCard, error)
	InsertCard(ctx context.Context, card *models.MatchCard) error
	DeleteCard(ctx context.Context, cardID int64) error
	SetCardExcluded(ctx context.Context, cardID int64, excluded bool) error
	ClearExclusions(ctx context.Context, matchID int64) error
	SetScore(ctx context.Context, matchID int64, score float64) error
	ReplaceDerivedCards(ctx context.Context, matchID int64, cards []*models.MatchCard) error
	ExpireEscrows(ctx context.Context) (int64, error)
}

type matchRepository struct {
	db *bun.DB
}

func NewMatchRepository(db *bun.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) DB() *bun.DB {
	return r.db
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match, cards []*models.MatchCard) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		match.CreatedAt = time.Now()
		match.UpdatedAt = time.Now()
		if match.Status == "" {
			match.Status = models.MatchActive
		}
		if _, err := tx.NewInsert().Model(match).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create match: %w", err)
		}
		for _, card := range cards {
			card.MatchID = match.ID
			card.CreatedAt = time.Now()
			card.UpdatedAt = time.Now()
		}
		if len(cards) > 0 {
			if _, err := tx.NewInsert().Model(&cards).Exec(ctx); err != nil {
				return fmt.Errorf("failed to create match cards: %w", err)
			}
		}
		return nil
	})
}

func (r *matchRepository) GetByMatchID(ctx context.Context, matchID string) (*models.Match, error) {
	match := new(models.Match)
	err := r.db.NewSelect().
		Model(match).
		Where("match_id = ?", matchID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

func (r *matchRepository) GetWithCards(ctx context.Context, matchID string) (*models.Match, error) {
	match := new(models.Match)
	err := r.db.NewSelect().
		Model(match).
		Relation("Cards").
		Where("m.match_id = ?", matchID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get match with cards: %w", err)
	}
	return match, nil
}

func (r *matchRepository) GetBetweenUsers(ctx context.Context, userAID, userBID string) (*models.Match, error) {
	match := new(models.Match)
	err := r.db.NewSelect().
		Model(match).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userAID, userBID, userBID, userAID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match between users: %w", err)
	}
	return match, nil
}

func (r *matchRepository) GetUserMatches(ctx context.Context, userID string, statuses ...models.MatchStatus) ([]*models.Match, error) {
	var matches []*models.Match
	q := r.db.NewSelect().
		Model(&matches).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID)
	if len(statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(statuses))
	}
	err := q.Order("score DESC").Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get user matches: %w", err)
	}
	return matches, nil
}

// UpdateStatus writes the match's lifecycle fields, guarded by the status
// the caller read. A raced transition touches zero rows and surfaces as
// trade.ErrConflict so no partial mutation ever lands.
func (r *matchRepository) UpdateStatus(ctx context.Context, m *models.Match, prev models.MatchStatus) error {
	res, err := r.db.NewUpdate().
		Model(m).
		Column("status", "requested_by", "requested_at", "confirmed_at", "escrow_expires_at", "user_modified", "updated_at").
		Where("id = ? AND status = ?", m.ID, prev).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update match status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return trade.ErrConflict
	}
	return nil
}

func (r *matchRepository) GetCard(ctx context.Context, cardID int64) (*models.MatchCard, error) {
	card := new(models.MatchCard)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", cardID).
		Scan(ctx)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("match card not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get match card: %w", err)
	}
	return card, nil
}

func (r *matchRepository) GetCards(ctx context.Context, matchID int64) ([]*models.MatchCard, error) {
	var cards []*models.MatchCard
	err := r.db.NewSelect().
		Model(&cards).
		Where("match_id = ?", matchID).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to get match cards: %w", err)
	}
	return cards, nil
}

func (r *matchRepository) InsertCard(ctx context.Context, card *models.MatchCard) error {
	if _, err := r.db.NewInsert().Model(card).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert match card: %w", err)
	}
	return nil
}

func (r *matchRepository) DeleteCard(ctx context.Context, cardID int64) error {
	if _, err := r.db.NewDelete().
		Model((*models.MatchCard)(nil)).
		Where("id = ?", cardID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete match card: %w", err)
	}
	return nil
}

func (r *matchRepository) SetCardExcluded(ctx context.Context, cardID int64, excluded bool) error {
	if _, err := r.db.NewUpdate().
		Model((*models.MatchCard)(nil)).
		Set("excluded = ?", excluded).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", cardID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to set card exclusion: %w", err)
	}
	return nil
}

func (r *matchRepository) ClearExclusions(ctx context.Context, matchID int64) error {
	if _, err := r.db.NewUpdate().
		Model((*models.MatchCard)(nil)).
		Set("excluded = ?", false).
		Set("updated_at = ?", time.Now()).
		Where("match_id = ?", matchID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear exclusions: %w", err)
	}
	return nil
}

func (r *matchRepository) SetScore(ctx context.Context, matchID int64, score float64) error {
	if _, err := r.db.NewUpdate().
		Model((*models.Match)(nil)).
		Set("score = ?", score).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", matchID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to set match score: %w", err)
	}
	return nil
}

// ReplaceDerivedCards swaps out the algorithmically derived cards after a
// recomputation, preserving custom cards and the excluded flags of cards
// that survived by collection item.
func (r *matchRepository) ReplaceDerivedCards(ctx context.Context, matchID int64, cards []*models.MatchCard) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var existing []*models.MatchCard
		err := tx.NewSelect().
			Model(&existing).
			Where("match_id = ? AND custom = false", matchID).
			Scan(ctx)
		if err != nil {
			return fmt.Errorf("failed to load derived cards: %w", err)
		}

		excludedByItem := make(map[int64]bool)
		for _, c := range existing {
			if c.CollectionItemID != nil && c.Excluded {
				excludedByItem[*c.CollectionItemID] = true
			}
		}

		if _, err := tx.NewDelete().
			Model((*models.MatchCard)(nil)).
			Where("match_id = ? AND custom = false", matchID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete derived cards: %w", err)
		}

		for _, card := range cards {
			card.MatchID = matchID
			card.CreatedAt = time.Now()
			card.UpdatedAt = time.Now()
			if card.CollectionItemID != nil && excludedByItem[*card.CollectionItemID] {
				card.Excluded = true
			}
		}
		if len(cards) > 0 {
			if _, err := tx.NewInsert().Model(&cards).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert derived cards: %w", err)
			}
		}
		return nil
	})
}

// ExpireEscrows cancels confirmed matches whose escrow window has lapsed.
func (r *matchRepository) ExpireEscrows(ctx context.Context) (int64, error) {
	res, err := r.db.NewUpdate().
		Model((*models.Match)(nil)).
		Set("status = ?", models.MatchCancelled).
		Set("updated_at = ?", time.Now()).
		Where("status = ? AND escrow_expires_at <= ?", models.MatchConfirmed, time.Now()).
		Exec(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to expire escrows: %w", err)
	}
	return res.RowsAffected()
}
