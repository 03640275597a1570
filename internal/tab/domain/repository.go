package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tab *Tab) error
	Find(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID) (*Tab, error)
	ListActive(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) ([]*Tab, error)

	// CloseIfActive flips active to false only when it is still true and
	// reports whether this call won the flip. This is the at-most-once
	// closure boundary; it must stay a single UPDATE.
	CloseIfActive(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID, now time.Time) (bool, error)

	InsertLine(ctx context.Context, db *gorm.DB, line *TabLine) error
	FindLine(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID) (*TabLine, error)
	DeleteLine(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID) error
	SetLineReady(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID, ready bool) (bool, error)
	ListLines(ctx context.Context, db *gorm.DB, tabID snowflake.ID) ([]*TabLine, error)
}
