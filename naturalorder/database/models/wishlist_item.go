package models

import (
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"github.com/uptrace/bun"
)

type WishlistItem struct {
	bun.BaseModel `bun:"table:wishlist_items,alias:wi"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull"`
	OracleID string `bun:"oracle_id,notnull"`
	Name     string `bun:"name,notnull"`

	MinCondition matching.Condition         `bun:"min_condition,notnull,default:'DMG'"`
	FoilPref     matching.FoilPreference    `bun:"foil_pref,notnull,default:'any'"`
	EditionPref  matching.EditionPreference `bun:"edition_pref,notnull,default:'any'"`

	// Acceptable printing IDs, only consulted when EditionPref is specific.
	Printings []string `bun:"printings,array"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// PrintingSet returns the acceptable printings as a membership set.
func (w *WishlistItem) PrintingSet() map[string]struct{} {
	set := make(map[string]struct{}, len(w.Printings))
	for _, p := range w.Printings {
		set[p] = struct{}{}
	}
	return set
}
