package trade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
)

// escrowWindow is how long a confirmed trade has to complete.
const escrowWindow = 15 * 24 * time.Hour

// MatchStore is the persistence contract the lifecycle needs. UpdateStatus
// must be conditional on the previously read status so that two racing
// transitions on the same match cannot both land.
type MatchStore interface {
	GetByMatchID(ctx context.Context, matchID string) (*models.Match, error)
	UpdateStatus(ctx context.Context, m *models.Match, prev models.MatchStatus) error
	GetCard(ctx context.Context, cardID int64) (*models.MatchCard, error)
	InsertCard(ctx context.Context, card *models.MatchCard) error
	DeleteCard(ctx context.Context, cardID int64) error
	SetCardExcluded(ctx context.Context, cardID int64, excluded bool) error
	ClearExclusions(ctx context.Context, matchID int64) error
	SetScore(ctx context.Context, matchID int64, score float64) error
}

// Notifier records a notification and attempts push delivery. Both are
// fire-and-forget: implementations log failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, match *models.Match, content string)
}

// Rescorer recomputes a match's score from its current cards.
type Rescorer interface {
	Rescore(ctx context.Context, match *models.Match) (float64, error)
}

// Service drives the match lifecycle on behalf of route handlers.
type Service struct {
	store    MatchStore
	notifier Notifier
	rescorer Rescorer
	now      func() time.Time
}

func NewService(store MatchStore, notifier Notifier, rescorer Rescorer) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		rescorer: rescorer,
		now:      time.Now,
	}
}

// load fetches the match and enforces the participant invariant.
func (s *Service) load(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.store.GetByMatchID(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match: %w", err)
	}
	if !match.Participant(actorID) {
		return nil, ErrNotParticipant
	}
	return match, nil
}

// transition applies one event: FSM lookup, optional extra mutation, then a
// conditional write keyed on the status we read.
func (s *Service) transition(ctx context.Context, match *models.Match, ev Event, mutate func(*models.Match)) error {
	prev := match.Status
	next, err := Next(prev, ev)
	if err != nil {
		return err
	}

	match.Status = next
	match.UpdatedAt = s.now()
	if mutate != nil {
		mutate(match)
	}

	if err := s.store.UpdateStatus(ctx, match, prev); err != nil {
		return fmt.Errorf("failed to persist %s transition: %w", ev, err)
	}

	slog.Info("Match transitioned",
		slog.String("type", "match"),
		slog.String("match_id", match.MatchID),
		slog.String("event", string(ev)),
		slog.String("from", string(prev)),
		slog.String("to", string(next)))
	return nil
}

// Contact marks that the two parties are in conversation.
func (s *Service) Contact(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, match, EventContact, nil); err != nil {
		return nil, err
	}
	return match, nil
}

// Dismiss hides the match for both parties. Reversible via Restore.
func (s *Service) Dismiss(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, match, EventDismiss, nil); err != nil {
		return nil, err
	}
	return match, nil
}

// Restore brings a dismissed match back, clears every card exclusion, and
// recomputes the score. Restoring twice leaves the same state as once.
func (s *Service) Restore(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, match, EventRestore, nil); err != nil {
		return nil, err
	}
	if err := s.store.ClearExclusions(ctx, match.ID); err != nil {
		return nil, fmt.Errorf("failed to clear exclusions: %w", err)
	}
	s.rescore(ctx, match)
	return match, nil
}

// Request asks the counterpart to go through with the trade.
func (s *Service) Request(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	err = s.transition(ctx, match, EventRequest, func(m *models.Match) {
		now := s.now()
		m.RequestedBy = actorID
		m.RequestedAt = &now
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, match.Counterpart(actorID), models.NotifyTradeRequested, match,
		"You have a new trade request.")
	return match, nil
}

// Confirm accepts a pending request. Only the counterpart of the requester
// may confirm; doing so opens the escrow window and notifies the requester.
func (s *Service) Confirm(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchRequested {
		if match.RequestedBy == "" {
			return nil, ErrNoPendingRequest
		}
		if match.RequestedBy == actorID {
			return nil, ErrOwnRequest
		}
	}

	requester := match.RequestedBy
	err = s.transition(ctx, match, EventConfirm, func(m *models.Match) {
		now := s.now()
		expires := now.Add(escrowWindow)
		m.ConfirmedAt = &now
		m.EscrowExpiresAt = &expires
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, requester, models.NotifyTradeConfirmed, match,
		"Your trade request was confirmed. You have 15 days to complete the trade.")
	return match, nil
}

// Complete closes out a confirmed trade.
func (s *Service) Complete(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, match, EventComplete, nil); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, match.Counterpart(actorID), models.NotifyTradeCompleted, match,
		"Your trade was marked as completed.")
	return match, nil
}

// Cancel abandons a confirmed trade.
func (s *Service) Cancel(ctx context.Context, matchID, actorID string) (*models.Match, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, match, EventCancel, nil); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, match.Counterpart(actorID), models.NotifyTradeCancelled, match,
		"The trade was cancelled.")
	return match, nil
}

// CustomCard is a manually added match card.
type CustomCard struct {
	OracleID   string
	PrintingID string
	Name       string
	OwnerID    string
}

// AddCustomCard appends a manually chosen card to the match.
func (s *Service) AddCustomCard(ctx context.Context, matchID, actorID string, card CustomCard) (*models.MatchCard, error) {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.beginCardEdit(ctx, match); err != nil {
		return nil, err
	}

	mc := &models.MatchCard{
		MatchID:    match.ID,
		OracleID:   card.OracleID,
		PrintingID: card.PrintingID,
		Name:       card.Name,
		OwnerID:    card.OwnerID,
		WantedBy:   match.Counterpart(card.OwnerID),
		Custom:     true,
		AddedBy:    actorID,
		CreatedAt:  s.now(),
		UpdatedAt:  s.now(),
	}
	if err := s.store.InsertCard(ctx, mc); err != nil {
		return nil, fmt.Errorf("failed to add custom card: %w", err)
	}
	s.rescore(ctx, match)
	return mc, nil
}

// DeleteCustomCard removes a custom card. Non-custom cards are never
// deleted, and a custom card may only be deleted by whoever added it.
func (s *Service) DeleteCustomCard(ctx context.Context, matchID string, cardID int64, actorID string) error {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to load card: %w", err)
	}
	if card.MatchID != match.ID {
		return fmt.Errorf("card %d does not belong to match %s", cardID, matchID)
	}
	if !card.Custom {
		return ErrNotCustomCard
	}
	if card.AddedBy != actorID {
		return ErrNotCardAdder
	}

	if err := s.beginCardEdit(ctx, match); err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return fmt.Errorf("failed to delete custom card: %w", err)
	}
	s.rescore(ctx, match)
	return nil
}

// ExcludeCard toggles a card out of (or back into) the trade without
// deleting it.
func (s *Service) ExcludeCard(ctx context.Context, matchID string, cardID int64, actorID string, excluded bool) error {
	match, err := s.load(ctx, matchID, actorID)
	if err != nil {
		return err
	}

	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return fmt.Errorf("failed to load card: %w", err)
	}
	if card.MatchID != match.ID {
		return fmt.Errorf("card %d does not belong to match %s", cardID, matchID)
	}

	if err := s.beginCardEdit(ctx, match); err != nil {
		return err
	}
	if err := s.store.SetCardExcluded(ctx, cardID, excluded); err != nil {
		return fmt.Errorf("failed to update card exclusion: %w", err)
	}
	s.rescore(ctx, match)
	return nil
}

// beginCardEdit enforces the card-editing rules. Edits in active, contacted
// or dismissed pass through; an edit while a request is pending invalidates
// the request, regressing the match to contacted and notifying the
// requester; terminal matches reject every edit.
func (s *Service) beginCardEdit(ctx context.Context, match *models.Match) error {
	if CanEditCards(match.Status) {
		match.UserModified = true
		match.UpdatedAt = s.now()
		if err := s.store.UpdateStatus(ctx, match, match.Status); err != nil {
			return fmt.Errorf("failed to flag user modification: %w", err)
		}
		return nil
	}

	if match.Status != models.MatchRequested {
		if match.Status.Terminal() {
			return ErrTerminalState
		}
		return ErrInvalidTransition
	}

	requester := match.RequestedBy
	err := s.transition(ctx, match, EventInvalidate, func(m *models.Match) {
		m.RequestedBy = ""
		m.RequestedAt = nil
		m.UserModified = true
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(ctx, requester, models.NotifyRequestInvalidated, match,
		"The match changed, so your trade request was withdrawn. Review the new contents and request again.")
	return nil
}

// rescore recomputes the match score after a mutation. Failure is logged
// and never fails the mutation: the ranking is eventually consistent.
func (s *Service) rescore(ctx context.Context, match *models.Match) {
	score, err := s.rescorer.Rescore(ctx, match)
	if err != nil {
		slog.Warn("Score recomputation failed",
			slog.String("type", "match"),
			slog.String("match_id", match.MatchID),
			slog.Any("error", err))
		return
	}
	if err := s.store.SetScore(ctx, match.ID, score); err != nil {
		slog.Warn("Score update failed",
			slog.String("type", "match"),
			slog.String("match_id", match.MatchID),
			slog.Any("error", err))
		return
	}
	match.Score = score
}
