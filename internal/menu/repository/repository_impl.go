package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/menu/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindRestaurant(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, active, created_at, updated_at
		 FROM restaurants WHERE id = ?`,
		restaurantID,
	).Scan(&restaurant).Error
	if err != nil {
		return nil, err
	}
	if restaurant.ID == 0 {
		return nil, nil
	}
	return &restaurant, nil
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, restaurantID, itemID snowflake.ID) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, restaurant_id, category_id, name, price, available, created_at, updated_at
		 FROM menu_items WHERE restaurant_id = ? AND id = ?`,
		restaurantID,
		itemID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListAvailable(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) ([]*domain.MenuItem, error) {
	var items []*domain.MenuItem
	err := db.WithContext(ctx).
		Model(&domain.MenuItem{}).
		Where("restaurant_id = ? AND available = ?", restaurantID, true).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
