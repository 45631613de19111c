package server

import (
	"testing"

	"github.com/naturalorder/naturalorder/naturalorder/database/models"
	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"github.com/stretchr/testify/assert"
)

func Test_ApplyWishlistRequest(t *testing.T) {
	t.Run("defaults are permissive", func(t *testing.T) {
		var item models.WishlistItem
		bad := applyWishlistRequest(&item, wishlistItemRequest{})

		assert.Empty(t, bad)
		assert.Equal(t, matching.ConditionDMG, item.MinCondition)
		assert.Equal(t, matching.FoilAny, item.FoilPref)
		assert.Equal(t, matching.EditionAny, item.EditionPref)
	})

	t.Run("specific edition requires printings", func(t *testing.T) {
		var item models.WishlistItem
		bad := applyWishlistRequest(&item, wishlistItemRequest{EditionPref: "specific"})
		assert.Equal(t, "printings", bad)

		bad = applyWishlistRequest(&item, wishlistItemRequest{
			EditionPref: "specific",
			Printings:   []string{"abc-123"},
		})
		assert.Empty(t, bad)
		assert.Equal(t, matching.EditionSpecific, item.EditionPref)
	})

	t.Run("switching back to any clears printings", func(t *testing.T) {
		item := models.WishlistItem{
			EditionPref: matching.EditionSpecific,
			Printings:   []string{"abc-123"},
		}
		bad := applyWishlistRequest(&item, wishlistItemRequest{EditionPref: "any"})

		assert.Empty(t, bad)
		assert.Equal(t, matching.EditionAny, item.EditionPref)
		assert.Nil(t, item.Printings)
	})

	t.Run("unknown values are rejected", func(t *testing.T) {
		var item models.WishlistItem
		assert.Equal(t, "min_condition", applyWishlistRequest(&item, wishlistItemRequest{MinCondition: "SP"}))
		assert.Equal(t, "foil_pref", applyWishlistRequest(&item, wishlistItemRequest{FoilPref: "etched"}))
		assert.Equal(t, "edition_pref", applyWishlistRequest(&item, wishlistItemRequest{EditionPref: "first"}))
	})
}
