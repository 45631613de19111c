package server

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/matching"
)

type collectionItemView struct {
	ID         int64  `json:"id"`
	OracleID   string `json:"oracle_id"`
	PrintingID string `json:"printing_id"`
	Name       string `json:"name"`
	SetCode    string `json:"set_code"`
	Condition  string `json:"condition"`
	Foil       bool   `json:"foil"`

	PriceMode    string   `json:"price_mode"`
	PricePercent float64  `json:"price_percent"`
	PriceFixed   *float64 `json:"price_fixed,omitempty"`
	AskingPrice  *float64 `json:"asking_price"`

	Paused   bool   `json:"paused"`
	PhotoURL string `json:"photo_url,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (a *App) collectionView(item *models.CollectionItem) collectionItemView {
	v := collectionItemView{
		ID:           item.ID,
		OracleID:     item.OracleID,
		PrintingID:   item.PrintingID,
		Name:         item.Name,
		SetCode:      item.SetCode,
		Condition:    string(item.Condition),
		Foil:         item.Foil,
		PriceMode:    string(item.PriceMode),
		PricePercent: item.PricePercent,
		PriceFixed:   item.PriceFixed,
		AskingPrice: matching.AskingPrice(item.PriceMode, item.PricePercent,
			item.PriceFixed, item.BasePrice, item.FoilPrice, item.Foil),
		Paused:    item.Paused,
		UpdatedAt: item.UpdatedAt,
	}
	if a.photos != nil && item.PhotoKey != "" {
		v.PhotoURL = a.photos.PhotoURL(item.PhotoKey)
	}
	return v
}

func (a *App) handleListCollection(c *fiber.Ctx) error {
	items, err := a.collections.GetByUserID(c.Context(), actorID(c))
	if err != nil {
		return sendTradeError(c, err)
	}

	views := make([]collectionItemView, 0, len(items))
	for _, item := range items {
		views = append(views, a.collectionView(item))
	}
	return sendData(c, fiber.StatusOK, views)
}

func (a *App) handleAddCollectionItem(c *fiber.Ctx) error {
	var req struct {
		OracleID     string   `json:"oracle_id"`
		PrintingID   string   `json:"printing_id"`
		Name         string   `json:"name"`
		SetCode      string   `json:"set_code"`
		Condition    string   `json:"condition"`
		Foil         bool     `json:"foil"`
		PriceMode    string   `json:"price_mode"`
		PricePercent *float64 `json:"price_percent"`
		PriceFixed   *float64 `json:"price_fixed"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}
	if req.OracleID == "" || req.PrintingID == "" || req.Name == "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST",
			"oracle_id, printing_id and name are required")
	}

	condition := matching.Condition(req.Condition)
	if !condition.Valid() {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Unknown condition")
	}

	item := &models.CollectionItem{
		UserID:       actorID(c),
		OracleID:     req.OracleID,
		PrintingID:   req.PrintingID,
		Name:         req.Name,
		SetCode:      req.SetCode,
		Condition:    condition,
		Foil:         req.Foil,
		PriceMode:    matching.PricePercentage,
		PricePercent: 100,
	}
	if req.PriceMode == string(matching.PriceFixed) {
		item.PriceMode = matching.PriceFixed
		item.PriceFixed = req.PriceFixed
	}
	if req.PricePercent != nil {
		item.PricePercent = *req.PricePercent
	}

	if a.catalog != nil {
		if prices, err := a.catalog.Prices(c.Context(), item.PrintingID); err == nil {
			item.BasePrice = prices.Base
			item.FoilPrice = prices.Foil
		}
	}

	if err := a.collections.Create(c.Context(), item); err != nil {
		return sendTradeError(c, err)
	}
	return sendData(c, fiber.StatusCreated, a.collectionView(item))
}

func (a *App) handleDeleteCollectionItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}
	if err := a.collections.Delete(c.Context(), int64(itemID), actorID(c)); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handlePauseCollectionItem toggles whether an item participates in
// matching. Paused items stay visible in the owner's collection.
func (a *App) handlePauseCollectionItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}

	var req struct {
		Paused bool `json:"paused"`
	}
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}

	if err := a.collections.SetPaused(c.Context(), int64(itemID), actorID(c), req.Paused); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (a *App) handleUploadPhoto(c *fiber.Ctx) error {
	if a.photos == nil {
		return sendError(c, fiber.StatusNotImplemented, "NOT_CONFIGURED", "Photo storage is not configured")
	}

	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}
	userID := actorID(c)

	item, err := a.collections.GetByID(c.Context(), int64(itemID))
	if err != nil {
		return sendTradeError(c, err)
	}
	if item.UserID != userID {
		return sendError(c, fiber.StatusNotFound, "NOT_FOUND", "Collection item not found")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Missing photo upload")
	}
	src, err := file.Open()
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Unreadable photo upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Unreadable photo upload")
	}

	key, err := a.photos.UploadConditionPhoto(c.Context(), userID, int64(itemID), data)
	if err != nil {
		return sendTradeError(c, err)
	}
	if err := a.collections.SetPhotoKey(c.Context(), int64(itemID), userID, key); err != nil {
		return sendTradeError(c, err)
	}
	return sendData(c, fiber.StatusOK, fiber.Map{"photo_url": a.photos.PhotoURL(key)})
}

func (a *App) handleDeletePhoto(c *fiber.Ctx) error {
	if a.photos == nil {
		return sendError(c, fiber.StatusNotImplemented, "NOT_CONFIGURED", "Photo storage is not configured")
	}

	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}
	userID := actorID(c)

	if err := a.photos.DeleteConditionPhoto(c.Context(), userID, int64(itemID)); err != nil {
		return sendTradeError(c, err)
	}
	if err := a.collections.SetPhotoKey(c.Context(), int64(itemID), userID, ""); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
