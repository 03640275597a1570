package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Tab is one open running total for a table or guest (a "comanda"). Number is
// the human-facing identifier printed on the physical card; it restarts from 1
// once a restaurant has no active tabs left, so collisions across days are
// expected and harmless.
type Tab struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	RestaurantID snowflake.ID `gorm:"not null;index" json:"restaurant_id"`
	Number       int64        `gorm:"not null" json:"number"`
	Active       bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TabLine is one ordered-item entry. Price is captured from the menu item when
// the line is created and never follows later menu edits. Lines are append
// only; a correction is a removal plus a fresh line.
type TabLine struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	TabID        snowflake.ID    `gorm:"not null;index" json:"tab_id"`
	RestaurantID snowflake.ID    `gorm:"not null;index" json:"restaurant_id"`
	MenuItemID   snowflake.ID    `gorm:"not null" json:"menu_item_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	Price        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Ready        bool            `gorm:"not null;default:false" json:"ready"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// ItemName is joined from the menu at read time and never persisted.
	ItemName string `gorm:"->;-:migration" json:"item_name,omitempty"`
}

// Subtotal is quantity times the captured unit price.
func (l TabLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.Price)
}

// TabDetail is a tab with its lines and computed total.
type TabDetail struct {
	Tab
	Lines []TabLine       `json:"card_items"`
	Total decimal.Decimal `json:"total"`
}
