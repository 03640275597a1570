package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Store owns the tab lifecycle. Restaurant scoping comes from the request
// context; a tab or line outside the caller's restaurant reads as not found.
type Store interface {
	Open(ctx context.Context) (Tab, error)
	Get(ctx context.Context, tabID snowflake.ID) (TabDetail, error)
	ListActive(ctx context.Context) ([]TabDetail, error)
	Total(ctx context.Context, tabID snowflake.ID) (decimal.Decimal, error)

	AddLine(ctx context.Context, tabID, menuItemID snowflake.ID, quantity decimal.Decimal) (TabLine, error)
	RemoveLine(ctx context.Context, tabID, lineID snowflake.ID) error
	SetLineReady(ctx context.Context, tabID, lineID snowflake.ID, ready bool) error
}
