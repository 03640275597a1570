package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// StockRecord is the running available-quantity counter for one menu item.
// Quantity is the sum of every applied delta; it may go negative (oversold),
// which is surfaced to reporting rather than rejected.
type StockRecord struct {
	MenuItemID   snowflake.ID    `gorm:"primaryKey" json:"menu_item_id"`
	RestaurantID snowflake.ID    `gorm:"not null;index" json:"restaurant_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
