package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindRestaurant(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) (*Restaurant, error)
	FindItem(ctx context.Context, db *gorm.DB, restaurantID, itemID snowflake.ID) (*MenuItem, error)
	ListAvailable(ctx context.Context, db *gorm.DB, restaurantID snowflake.ID) ([]*MenuItem, error)
}
