package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/trade"
)

type matchView struct {
	MatchID         string     `json:"match_id"`
	Counterpart     string     `json:"counterpart"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	Score           float64    `json:"score"`
	UserModified    bool       `json:"user_modified"`
	RequestedBy     string     `json:"requested_by,omitempty"`
	RequestedAt     *time.Time `json:"requested_at,omitempty"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	EscrowExpiresAt *time.Time `json:"escrow_expires_at,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Cards []matchCardView `json:"cards,omitempty"`
}

type matchCardView struct {
	ID           int64    `json:"id"`
	OracleID     string   `json:"oracle_id"`
	PrintingID   string   `json:"printing_id,omitempty"`
	Name         string   `json:"name"`
	Foil         bool     `json:"foil"`
	OwnerID      string   `json:"owner_id"`
	WantedBy     string   `json:"wanted_by"`
	Custom       bool     `json:"custom"`
	Excluded     bool     `json:"excluded"`
	AddedBy      string   `json:"added_by,omitempty"`
	AskingPrice  *float64 `json:"asking_price"`
	PriceWarning bool     `json:"price_warning"`
}

func viewOf(m *models.Match, viewerID string) matchView {
	v := matchView{
		MatchID:         m.MatchID,
		Counterpart:     m.Counterpart(viewerID),
		Status:          string(m.Status),
		Type:            string(m.Type),
		Score:           m.Score,
		UserModified:    m.UserModified,
		RequestedBy:     m.RequestedBy,
		RequestedAt:     m.RequestedAt,
		ConfirmedAt:     m.ConfirmedAt,
		EscrowExpiresAt: m.EscrowExpiresAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for _, c := range m.Cards {
		v.Cards = append(v.Cards, matchCardView{
			ID:           c.ID,
			OracleID:     c.OracleID,
			PrintingID:   c.PrintingID,
			Name:         c.Name,
			Foil:         c.Foil,
			OwnerID:      c.OwnerID,
			WantedBy:     c.WantedBy,
			Custom:       c.Custom,
			Excluded:     c.Excluded,
			AddedBy:      c.AddedBy,
			AskingPrice:  c.AskingPrice,
			PriceWarning: c.PriceWarning,
		})
	}
	return v
}

// handleListMatches returns the viewer's matches, best score first.
// Status filtering via ?status=active,contacted.
func (a *App) handleListMatches(c *fiber.Ctx) error {
	userID := actorID(c)

	var statuses []models.MatchStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range splitCSV(raw) {
			statuses = append(statuses, models.MatchStatus(s))
		}
	}

	matches, err := a.matches.GetUserMatches(c.Context(), userID, statuses...)
	if err != nil {
		return sendTradeError(c, err)
	}

	views := make([]matchView, 0, len(matches))
	for _, m := range matches {
		views = append(views, viewOf(m, userID))
	}
	return sendData(c, fiber.StatusOK, views)
}

func (a *App) handleGetMatch(c *fiber.Ctx) error {
	userID := actorID(c)

	match, err := a.matches.GetWithCards(c.Context(), c.Params("matchID"))
	if err != nil {
		return sendTradeError(c, err)
	}
	if !match.Participant(userID) {
		return sendTradeError(c, trade.ErrNotParticipant)
	}
	return sendData(c, fiber.StatusOK, viewOf(match, userID))
}

// lifecycleHandler adapts one trade service transition to a route.
func (a *App) lifecycleHandler(action func(ctx context.Context, matchID, actorID string) (*models.Match, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := actorID(c)
		match, err := action(c.Context(), c.Params("matchID"), userID)
		if err != nil {
			return sendTradeError(c, err)
		}
		return sendData(c, fiber.StatusOK, viewOf(match, userID))
	}
}

func (a *App) handleAddCustomCard(c *fiber.Ctx) error {
	userID := actorID(c)

	var req struct {
		OracleID   string `json:"oracle_id"`
		PrintingID string `json:"printing_id"`
		Name       string `json:"name"`
		OwnerID    string `json:"owner_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}
	if req.OracleID == "" || req.Name == "" || req.OwnerID == "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST",
			"oracle_id, name and owner_id are required")
	}

	card, err := a.trades.AddCustomCard(c.Context(), c.Params("matchID"), userID, trade.CustomCard{
		OracleID:   req.OracleID,
		PrintingID: req.PrintingID,
		Name:       req.Name,
		OwnerID:    req.OwnerID,
	})
	if err != nil {
		return sendTradeError(c, err)
	}
	return sendData(c, fiber.StatusCreated, fiber.Map{"card_id": card.ID})
}

func (a *App) handleDeleteCustomCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("cardID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid card id")
	}

	if err := a.trades.DeleteCustomCard(c.Context(), c.Params("matchID"), int64(cardID), actorID(c)); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *App) handleExcludeCard(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("cardID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid card id")
	}

	var req struct {
		Excluded bool `json:"excluded"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}

	if err := a.trades.ExcludeCard(c.Context(), c.Params("matchID"), int64(cardID), actorID(c), req.Excluded); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
