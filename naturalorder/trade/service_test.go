package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	matches map[string]*models.Match
	cards   map[int64]*models.MatchCard
	nextID  int64

	updateErr error
}

func newFakeStore(matches ...*models.Match) *fakeStore {
	s := &fakeStore{
		matches: make(map[string]*models.Match),
		cards:   make(map[int64]*models.MatchCard),
		nextID:  100,
	}
	for _, m := range matches {
		s.matches[m.MatchID] = m
	}
	return s
}

func (s *fakeStore) addCard(c *models.MatchCard) *models.MatchCard {
	s.nextID++
	c.ID = s.nextID
	s.cards[c.ID] = c
	return c
}

func (s *fakeStore) GetByMatchID(_ context.Context, matchID string) (*models.Match, error) {
	m, ok := s.matches[matchID]
	if !ok {
		return nil, errors.New("match not found")
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, m *models.Match, prev models.MatchStatus) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	stored, ok := s.matches[m.MatchID]
	if !ok {
		return errors.New("match not found")
	}
	if stored.Status != prev {
		return ErrConflict
	}
	cp := *m
	s.matches[m.MatchID] = &cp
	return nil
}

func (s *fakeStore) GetCard(_ context.Context, cardID int64) (*models.MatchCard, error) {
	c, ok := s.cards[cardID]
	if !ok {
		return nil, errors.New("card not found")
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) InsertCard(_ context.Context, card *models.MatchCard) error {
	s.addCard(card)
	return nil
}

func (s *fakeStore) DeleteCard(_ context.Context, cardID int64) error {
	delete(s.cards, cardID)
	return nil
}

func (s *fakeStore) SetCardExcluded(_ context.Context, cardID int64, excluded bool) error {
	c, ok := s.cards[cardID]
	if !ok {
		return errors.New("card not found")
	}
	c.Excluded = excluded
	return nil
}

func (s *fakeStore) ClearExclusions(_ context.Context, matchID int64) error {
	for _, c := range s.cards {
		if c.MatchID == matchID {
			c.Excluded = false
		}
	}
	return nil
}

func (s *fakeStore) SetScore(_ context.Context, matchID int64, score float64) error {
	for _, m := range s.matches {
		if m.ID == matchID {
			m.Score = score
		}
	}
	return nil
}

type recordedNotification struct {
	UserID string
	Type   models.NotificationType
}

type fakeNotifier struct {
	sent []recordedNotification
}

func (n *fakeNotifier) Notify(_ context.Context, userID string, typ models.NotificationType, _ *models.Match, _ string) {
	n.sent = append(n.sent, recordedNotification{UserID: userID, Type: typ})
}

type fakeRescorer struct {
	score float64
	err   error
	calls int
}

func (r *fakeRescorer) Rescore(_ context.Context, _ *models.Match) (float64, error) {
	r.calls++
	return r.score, r.err
}

func fixture(status models.MatchStatus) (*Service, *fakeStore, *fakeNotifier, *fakeRescorer) {
	store := newFakeStore(&models.Match{
		ID:      1,
		MatchID: "m-1",
		UserAID: "alice",
		UserBID: "bob",
		Status:  status,
	})
	notifier := &fakeNotifier{}
	rescorer := &fakeRescorer{score: 42.5}

	svc := NewService(store, notifier, rescorer)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, store, notifier, rescorer
}

func Test_Service_RequestAndConfirm(t *testing.T) {
	svc, store, notifier, _ := fixture(models.MatchActive)
	ctx := context.Background()

	m, err := svc.Request(ctx, "m-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequested, m.Status)
	assert.Equal(t, "alice", m.RequestedBy)
	require.NotNil(t, m.RequestedAt)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "bob", notifier.sent[0].UserID)
	assert.Equal(t, models.NotifyTradeRequested, notifier.sent[0].Type)

	// The requester cannot confirm their own request.
	_, err = svc.Confirm(ctx, "m-1", "alice")
	assert.ErrorIs(t, err, ErrOwnRequest)
	assert.Equal(t, models.MatchRequested, store.matches["m-1"].Status)

	m, err = svc.Confirm(ctx, "m-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.MatchConfirmed, m.Status)
	require.NotNil(t, m.ConfirmedAt)
	require.NotNil(t, m.EscrowExpiresAt)
	assert.Equal(t, m.ConfirmedAt.Add(15*24*time.Hour), *m.EscrowExpiresAt)

	// The original requester is told their request went through.
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "alice", notifier.sent[1].UserID)
	assert.Equal(t, models.NotifyTradeConfirmed, notifier.sent[1].Type)
}

func Test_Service_ConfirmRequiresPendingRequest(t *testing.T) {
	svc, _, _, _ := fixture(models.MatchActive)

	_, err := svc.Confirm(context.Background(), "m-1", "bob")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func Test_Service_OnlyParticipantsMayAct(t *testing.T) {
	svc, store, _, _ := fixture(models.MatchActive)

	_, err := svc.Request(context.Background(), "m-1", "mallory")
	assert.ErrorIs(t, err, ErrNotParticipant)
	assert.Equal(t, models.MatchActive, store.matches["m-1"].Status)
}

func Test_Service_RestoreClearsExclusions(t *testing.T) {
	svc, store, _, rescorer := fixture(models.MatchDismissed)
	store.addCard(&models.MatchCard{MatchID: 1, OracleID: "counterspell", OwnerID: "bob", WantedBy: "alice", Excluded: true})
	store.addCard(&models.MatchCard{MatchID: 1, OracleID: "lightning-bolt", OwnerID: "alice", WantedBy: "bob", Excluded: true})
	ctx := context.Background()

	m, err := svc.Restore(ctx, "m-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, models.MatchActive, m.Status)
	for _, c := range store.cards {
		assert.False(t, c.Excluded, "restore must clear every exclusion")
	}
	assert.Equal(t, 1, rescorer.calls)
	assert.Equal(t, 42.5, store.matches["m-1"].Score)

	// Restoring again is not a legal transition from active, so the state
	// reached by one restore is final.
	_, err = svc.Restore(ctx, "m-1", "alice")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	for _, c := range store.cards {
		assert.False(t, c.Excluded)
	}
}

func Test_Service_EditDuringRequestedInvalidatesRequest(t *testing.T) {
	svc, store, notifier, _ := fixture(models.MatchRequested)
	now := time.Now()
	stored := store.matches["m-1"]
	stored.RequestedBy = "bob"
	stored.RequestedAt = &now
	card := store.addCard(&models.MatchCard{MatchID: 1, OracleID: "counterspell", OwnerID: "bob", WantedBy: "alice", Custom: true, AddedBy: "alice"})
	ctx := context.Background()

	err := svc.DeleteCustomCard(ctx, "m-1", card.ID, "alice")
	require.NoError(t, err)

	got := store.matches["m-1"]
	assert.Equal(t, models.MatchContacted, got.Status)
	assert.Empty(t, got.RequestedBy)
	assert.Nil(t, got.RequestedAt)
	assert.True(t, got.UserModified)
	_, ok := store.cards[card.ID]
	assert.False(t, ok, "custom card should be deleted")

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "bob", notifier.sent[0].UserID)
	assert.Equal(t, models.NotifyRequestInvalidated, notifier.sent[0].Type)
}

func Test_Service_TerminalMatchRejectsEdits(t *testing.T) {
	svc, store, _, _ := fixture(models.MatchCompleted)
	card := store.addCard(&models.MatchCard{MatchID: 1, OracleID: "counterspell", OwnerID: "bob", WantedBy: "alice", Custom: true, AddedBy: "alice"})
	ctx := context.Background()

	err := svc.DeleteCustomCard(ctx, "m-1", card.ID, "alice")
	assert.ErrorIs(t, err, ErrTerminalState)
	_, ok := store.cards[card.ID]
	assert.True(t, ok, "no partial mutation on rejection")

	err = svc.ExcludeCard(ctx, "m-1", card.ID, "alice", true)
	assert.ErrorIs(t, err, ErrTerminalState)
	assert.False(t, store.cards[card.ID].Excluded)

	_, err = svc.Request(ctx, "m-1", "alice")
	assert.ErrorIs(t, err, ErrTerminalState)
}

func Test_Service_CustomCardRules(t *testing.T) {
	svc, store, _, _ := fixture(models.MatchActive)
	derived := store.addCard(&models.MatchCard{MatchID: 1, OracleID: "counterspell", OwnerID: "bob", WantedBy: "alice"})
	custom := store.addCard(&models.MatchCard{MatchID: 1, OracleID: "brainstorm", OwnerID: "bob", WantedBy: "alice", Custom: true, AddedBy: "alice"})
	ctx := context.Background()

	// Non-custom cards can be excluded but never deleted.
	err := svc.DeleteCustomCard(ctx, "m-1", derived.ID, "alice")
	assert.ErrorIs(t, err, ErrNotCustomCard)

	err = svc.ExcludeCard(ctx, "m-1", derived.ID, "alice", true)
	require.NoError(t, err)
	assert.True(t, store.cards[derived.ID].Excluded)
	assert.True(t, store.matches["m-1"].UserModified)

	// A custom card may only be deleted by its adder.
	err = svc.DeleteCustomCard(ctx, "m-1", custom.ID, "bob")
	assert.ErrorIs(t, err, ErrNotCardAdder)

	err = svc.DeleteCustomCard(ctx, "m-1", custom.ID, "alice")
	require.NoError(t, err)
}

func Test_Service_AddCustomCard(t *testing.T) {
	svc, store, _, rescorer := fixture(models.MatchContacted)
	ctx := context.Background()

	card, err := svc.AddCustomCard(ctx, "m-1", "alice", CustomCard{
		OracleID: "brainstorm",
		Name:     "Brainstorm",
		OwnerID:  "bob",
	})
	require.NoError(t, err)
	assert.True(t, card.Custom)
	assert.Equal(t, "alice", card.AddedBy)
	assert.Equal(t, "alice", card.WantedBy, "a card bob owns is wanted by alice")
	assert.Equal(t, 1, rescorer.calls)
	assert.Len(t, store.cards, 1)
}

func Test_Service_RescoreFailureNeverFailsMutation(t *testing.T) {
	svc, store, _, rescorer := fixture(models.MatchActive)
	rescorer.err = errors.New("catalog unavailable")
	card := store.addCard(&models.MatchCard{MatchID: 1, OracleID: "counterspell", OwnerID: "bob", WantedBy: "alice"})

	err := svc.ExcludeCard(context.Background(), "m-1", card.ID, "bob", true)
	require.NoError(t, err, "stale score is acceptable, a failed mutation is not")
	assert.True(t, store.cards[card.ID].Excluded)
}

func Test_Service_DismissAndRequestFromDismissed(t *testing.T) {
	svc, store, _, _ := fixture(models.MatchActive)
	ctx := context.Background()

	m, err := svc.Dismiss(ctx, "m-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.MatchDismissed, m.Status)

	// A dismissed match can still be requested directly.
	m, err = svc.Request(ctx, "m-1", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.MatchRequested, m.Status)
	assert.Equal(t, "bob", store.matches["m-1"].RequestedBy)
}
