package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MatchCard struct {
	bun.BaseModel `bun:"table:match_cards,alias:mc"`

	ID      int64 `bun:"id,pk,autoincrement"`
	MatchID int64 `bun:"match_id,notnull"`

	// CollectionItemID is nil for custom cards, which are identified by
	// catalog reference only.
	CollectionItemID *int64 `bun:"collection_item_id"`
	WishlistItemID   *int64 `bun:"wishlist_item_id"`

	OracleID   string `bun:"oracle_id,notnull"`
	PrintingID string `bun:"printing_id,type:text,default:''"`
	Name       string `bun:"name,notnull"`
	Foil       bool   `bun:"foil,notnull,default:false"`

	OwnerID  string `bun:"owner_id,notnull"`
	WantedBy string `bun:"wanted_by,notnull"`

	Custom   bool   `bun:"custom,notnull,default:false"`
	Excluded bool   `bun:"excluded,notnull,default:false"`
	AddedBy  string `bun:"added_by,type:text,default:''"`

	AskingPrice  *float64 `bun:"asking_price"`
	PriceWarning bool     `bun:"price_warning,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
