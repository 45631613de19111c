package models

import (
	"time"

	"github.com/naturalorder/naturalorder/naturalorder/matching"
	"github.com/uptrace/bun"
)

type CollectionItem struct {
	bun.BaseModel `bun:"table:collection_items,alias:ci"`

	ID         int64  `bun:"id,pk,autoincrement"`
	UserID     string `bun:"user_id,notnull"`
	OracleID   string `bun:"oracle_id,notnull"`
	PrintingID string `bun:"printing_id,notnull"`
	Name       string `bun:"name,notnull"`
	SetCode    string `bun:"set_code,notnull"`

	Condition matching.Condition `bun:"condition,notnull"`
	Foil      bool               `bun:"foil,notnull,default:false"`

	PriceMode    matching.PriceMode `bun:"price_mode,notnull,default:'percentage'"`
	PricePercent float64            `bun:"price_percent,notnull,default:100"`
	PriceFixed   *float64           `bun:"price_fixed"`

	// Cached market prices from the catalog, refreshed by the price sync.
	BasePrice *float64 `bun:"base_price"`
	FoilPrice *float64 `bun:"foil_price"`

	Paused   bool   `bun:"paused,notnull,default:false"`
	PhotoKey string `bun:"photo_key,type:text,default:''"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
