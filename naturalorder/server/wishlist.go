package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/matching"
)

type wishlistItemView struct {
	ID           int64    `json:"id"`
	OracleID     string   `json:"oracle_id"`
	Name         string   `json:"name"`
	MinCondition string   `json:"min_condition"`
	FoilPref     string   `json:"foil_pref"`
	EditionPref  string   `json:"edition_pref"`
	Printings    []string `json:"printings,omitempty"`
}

type wishlistItemRequest struct {
	OracleID     string   `json:"oracle_id"`
	Name         string   `json:"name"`
	MinCondition string   `json:"min_condition"`
	FoilPref     string   `json:"foil_pref"`
	EditionPref  string   `json:"edition_pref"`
	Printings    []string `json:"printings"`
}

func wishlistView(item *models.WishlistItem) wishlistItemView {
	return wishlistItemView{
		ID:           item.ID,
		OracleID:     item.OracleID,
		Name:         item.Name,
		MinCondition: string(item.MinCondition),
		FoilPref:     string(item.FoilPref),
		EditionPref:  string(item.EditionPref),
		Printings:    item.Printings,
	}
}

// applyWishlistRequest validates and copies request fields onto the model.
// Unset preferences default to the most permissive option.
func applyWishlistRequest(item *models.WishlistItem, req wishlistItemRequest) (badField string) {
	item.MinCondition = matching.ConditionDMG
	if req.MinCondition != "" {
		item.MinCondition = matching.Condition(req.MinCondition)
		if !item.MinCondition.Valid() {
			return "min_condition"
		}
	}

	item.FoilPref = matching.FoilAny
	switch matching.FoilPreference(req.FoilPref) {
	case matching.FoilOnly, matching.NonFoil:
		item.FoilPref = matching.FoilPreference(req.FoilPref)
	case matching.FoilAny, "":
	default:
		return "foil_pref"
	}

	item.EditionPref = matching.EditionAny
	item.Printings = nil
	switch matching.EditionPreference(req.EditionPref) {
	case matching.EditionSpecific:
		if len(req.Printings) == 0 {
			return "printings"
		}
		item.EditionPref = matching.EditionSpecific
		item.Printings = req.Printings
	case matching.EditionAny, "":
	default:
		return "edition_pref"
	}
	return ""
}

func (a *App) handleListWishlist(c *fiber.Ctx) error {
	items, err := a.wishlists.GetByUserID(c.Context(), actorID(c))
	if err != nil {
		return sendTradeError(c, err)
	}

	views := make([]wishlistItemView, 0, len(items))
	for _, item := range items {
		views = append(views, wishlistView(item))
	}
	return sendData(c, fiber.StatusOK, views)
}

func (a *App) handleAddWishlistItem(c *fiber.Ctx) error {
	var req wishlistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}
	if req.OracleID == "" || req.Name == "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "oracle_id and name are required")
	}

	item := &models.WishlistItem{
		UserID:   actorID(c),
		OracleID: req.OracleID,
		Name:     req.Name,
	}
	if field := applyWishlistRequest(item, req); field != "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid value for "+field)
	}

	if err := a.wishlists.Create(c.Context(), item); err != nil {
		return sendTradeError(c, err)
	}
	return sendData(c, fiber.StatusCreated, wishlistView(item))
}

func (a *App) handleUpdateWishlistItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}
	userID := actorID(c)

	item, err := a.wishlists.GetByID(c.Context(), int64(itemID))
	if err != nil {
		return sendTradeError(c, err)
	}
	if item.UserID != userID {
		return sendError(c, fiber.StatusNotFound, "NOT_FOUND", "Wishlist item not found")
	}

	var req wishlistItemRequest
	if err := c.BodyParser(&req); err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
	}
	if field := applyWishlistRequest(item, req); field != "" {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid value for "+field)
	}

	if err := a.wishlists.Update(c.Context(), item); err != nil {
		return sendTradeError(c, err)
	}
	return sendData(c, fiber.StatusOK, wishlistView(item))
}

func (a *App) handleDeleteWishlistItem(c *fiber.Ctx) error {
	itemID, err := c.ParamsInt("itemID")
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "BAD_REQUEST", "Invalid item id")
	}
	if err := a.wishlists.Delete(c.Context(), int64(itemID), actorID(c)); err != nil {
		return sendTradeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
