package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Restaurant is the tenant boundary. Every other entity carries its ID.
type Restaurant struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null" json:"name"`
	Slug      string       `gorm:"uniqueIndex;not null" json:"slug"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Category struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	RestaurantID snowflake.ID `gorm:"not null;index" json:"restaurant_id"`
	Name         string       `gorm:"not null" json:"name"`
	Sort         int          `gorm:"not null;default:0" json:"sort"`
}

// MenuItem belongs to one restaurant. Price is the live menu price; open tab
// lines keep the price captured at the time the line was added.
type MenuItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	RestaurantID snowflake.ID    `gorm:"not null;index" json:"restaurant_id"`
	CategoryID   *snowflake.ID   `gorm:"index" json:"category_id,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	Available    bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
