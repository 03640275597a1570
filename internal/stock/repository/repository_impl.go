package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository owns the stock_records table. The increment is one upsert
// statement so concurrent deltas against the same item never lose updates.
type Repository struct{}

func Provide() *Repository {
	return &Repository{}
}

func (r *Repository) Increment(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID, delta decimal.Decimal) (decimal.Decimal, error) {
	var row struct {
		Quantity decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`INSERT INTO stock_records (menu_item_id, restaurant_id, quantity, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (menu_item_id) DO UPDATE
		 SET quantity = stock_records.quantity + excluded.quantity,
		     updated_at = excluded.updated_at
		 RETURNING quantity`,
		menuItemID,
		restaurantID,
		delta,
		time.Now().UTC(),
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Quantity, nil
}

func (r *Repository) Find(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID) (decimal.Decimal, bool, error) {
	var row struct {
		MenuItemID snowflake.ID
		Quantity   decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT menu_item_id, quantity FROM stock_records
		 WHERE restaurant_id = ? AND menu_item_id = ?`,
		restaurantID,
		menuItemID,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, false, err
	}
	if row.MenuItemID == 0 {
		return decimal.Zero, false, nil
	}
	return row.Quantity, true, nil
}
