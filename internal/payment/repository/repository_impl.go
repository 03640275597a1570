package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, restaurant_id, tab_id, method, amount, paid_amount, change_amount, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.RestaurantID,
		payment.TabID,
		payment.Method,
		payment.Amount,
		payment.Tendered,
		payment.Change,
		payment.Notes,
		payment.CreatedAt,
	).Error
}

func (r *repo) FindByTab(ctx context.Context, db *gorm.DB, restaurantID, tabID snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, restaurant_id, tab_id, method, amount, paid_amount, change_amount, notes, created_at
		 FROM payments WHERE restaurant_id = ? AND tab_id = ?`,
		restaurantID,
		tabID,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}
