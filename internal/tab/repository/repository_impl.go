package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/tab/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert assigns the display number inside the statement: one more than the
// highest number still active for the restaurant, so numbering restarts once
// every tab has been closed.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, tab *domain.Tab) error {
	var row struct {
		Number int64
	}
	err := db.WithContext(ctx).Raw(
		`INSERT INTO tabs (id, restaurant_id, number, active, created_at, updated_at)
		 SELECT ?, ?, COALESCE(MAX(number), 0) + 1, ?, ?, ?
		 FROM tabs WHERE restaurant_id = ? AND active = ?
		 RETURNING number`,
		tab.ID,
		tab.RestaurantID,
		tab.Active,
		tab.CreatedAt,
		tab.UpdatedAt,
		tab.RestaurantID,
		true,
	).Scan(&row).Error
	if err != nil {
		return err
	}
	tab.Number = row.Number
	return nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID) (*domain.Tab, error) {
	var tab domain.Tab
	err := db.WithContext(ctx).Raw(
		`SELECT id, restaurant_id, number, active, created_at, updated_at
		 FROM tabs WHERE restaurant_id = ? AND id = ?`,
		restaurantID,
		tabID,
	).Scan(&tab).Error
	if err != nil {
		return nil, err
	}
	if tab.ID == 0 {
		return nil, nil
	}
	return &tab, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) ([]*domain.Tab, error) {
	var tabs []*domain.Tab
	err := db.WithContext(ctx).
		Model(&domain.Tab{}).
		Where("restaurant_id = ? AND active = ?", restaurantID, true).
		Order("number asc").
		Find(&tabs).Error
	if err != nil {
		return nil, err
	}
	return tabs, nil
}

func (r *repo) CloseIfActive(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tabs SET active = ?, updated_at = ?
		 WHERE restaurant_id = ? AND id = ? AND active = ?`,
		false,
		now,
		restaurantID,
		tabID,
		true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertLine(ctx context.Context, db *gorm.DB, line *domain.TabLine) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO tab_lines (id, tab_id, restaurant_id, menu_item_id, quantity, price, ready, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		line.ID,
		line.TabID,
		line.RestaurantID,
		line.MenuItemID,
		line.Quantity,
		line.Price,
		line.Ready,
		line.CreatedAt,
	).Error
}

func (r *repo) FindLine(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID) (*domain.TabLine, error) {
	var line domain.TabLine
	err := db.WithContext(ctx).Raw(
		`SELECT id, tab_id, restaurant_id, menu_item_id, quantity, price, ready, created_at
		 FROM tab_lines WHERE tab_id = ? AND id = ?`,
		tabID,
		lineID,
	).Scan(&line).Error
	if err != nil {
		return nil, err
	}
	if line.ID == 0 {
		return nil, nil
	}
	return &line, nil
}

func (r *repo) DeleteLine(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM tab_lines WHERE tab_id = ? AND id = ?`,
		tabID,
		lineID,
	).Error
}

func (r *repo) SetLineReady(ctx context.Context, db *gorm.DB, tabID, lineID snowflake.ID, ready bool) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE tab_lines SET ready = ? WHERE tab_id = ? AND id = ?`,
		ready,
		tabID,
		lineID,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) ListLines(ctx context.Context, db *gorm.DB, tabID snowflake.ID) ([]*domain.TabLine, error) {
	var lines []*domain.TabLine
	err := db.WithContext(ctx).Raw(
		`SELECT l.id, l.tab_id, l.restaurant_id, l.menu_item_id, l.quantity, l.price, l.ready, l.created_at,
		        m.name AS item_name
		 FROM tab_lines l
		 LEFT JOIN menu_items m ON m.id = l.menu_item_id
		 WHERE l.tab_id = ?
		 ORDER BY l.created_at ASC, l.id ASC`,
		tabID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
