package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Method codes match the terminal apps: cash, credit, debit, Pix, other.
const (
	MethodCash   = "CA"
	MethodCredit = "CR"
	MethodDebit  = "DE"
	MethodPix    = "PX"
	MethodOther  = "OT"
)

// Payment closes exactly one tab. Amount is the tab total snapshotted at the
// moment of closing. Tendered and Change are set for cash only; for any other
// method the full amount is assumed received through an external processor.
type Payment struct {
	ID           snowflake.ID     `gorm:"primaryKey" json:"id"`
	RestaurantID snowflake.ID     `gorm:"not null;index" json:"restaurant_id"`
	TabID        snowflake.ID     `gorm:"not null;uniqueIndex" json:"card_id"`
	Method       string           `gorm:"not null" json:"payment_method"`
	Amount       decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"amount"`
	Tendered     *decimal.Decimal `gorm:"column:paid_amount;type:decimal(20,4)" json:"paid_amount,omitempty"`
	Change       *decimal.Decimal `gorm:"column:change_amount;type:decimal(20,4)" json:"change_amount,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	CreatedAt    time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type CloseRequest struct {
	TabID    snowflake.ID
	Method   string
	Tendered *decimal.Decimal
	Notes    string
}

type Processor interface {
	Close(ctx context.Context, req CloseRequest) (Payment, error)
	FindByTab(ctx context.Context, tabID snowflake.ID) (Payment, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByTab(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID) (*Payment, error)
}
