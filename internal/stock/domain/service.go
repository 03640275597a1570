package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger applies signed quantity deltas to stock records. Apply must run as a
// single atomic read-modify-write in the store; callers pass their own
// transaction handle so a line insert and its stock delta commit together.
type Ledger interface {
	Apply(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID, delta decimal.Decimal) (decimal.Decimal, error)
	Quantity(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID) (decimal.Decimal, error)
}
