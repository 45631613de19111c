package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// handleCardSearch proxies a card search to the catalog so clients never
// talk to it directly.
func (a *App) handleCardSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Missing query")
	}

	cards, err := a.catalog.Search(c.Context(), query)
	if err != nil {
		return sendError(c, fiber.StatusBadGateway, "CATALOG_UNAVAILABLE", "Card catalog is unavailable")
	}
	return sendData(c, fiber.StatusOK, cards)
}

func (a *App) handleCardAutocomplete(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return sendData(c, fiber.StatusOK, []string{})
	}

	names, err := a.catalog.Autocomplete(c.Context(), query)
	if err != nil {
		return sendError(c, fiber.StatusBadGateway, "CATALOG_UNAVAILABLE", "Card catalog is unavailable")
	}
	return sendData(c, fiber.StatusOK, names)
}

type notificationView struct {
	NotificationID string    `json:"notification_id"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *App) handleListNotifications(c *fiber.Ctx) error {
	unread, err := a.notifications.GetUnread(c.Context(), actorID(c))
	if err != nil {
		return sendTradeError(c, err)
	}

	views := make([]notificationView, 0, len(unread))
	for _, n := range unread {
		views = append(views, notificationView{
			NotificationID: n.NotificationID,
			Type:           string(n.Type),
			Content:        n.Content,
			CreatedAt:      n.CreatedAt,
		})
	}
	return sendData(c, fiber.StatusOK, views)
}

func (a *App) handleMarkNotificationRead(c *fiber.Ctx) error {
	if err := a.notifications.MarkRead(c.Context(), c.Params("notificationID"), actorID(c)); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *App) handleUpdateLocation(c *fiber.Ctx) error {
	var req struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}

	// Both or neither: a lone coordinate is meaningless.
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST",
			"latitude and longitude must be set together")
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
			return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Coordinates out of range")
		}
	}

	if err := a.users.UpdateLocation(c.Context(), actorID(c), req.Latitude, req.Longitude); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *App) handleSetPushToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}

	if err := a.users.SetPushToken(c.Context(), actorID(c), req.Token); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
