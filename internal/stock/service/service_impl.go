package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/comanda/internal/stock/domain"
	"github.com/smallbiznis/comanda/internal/stock/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo *repository.Repository
}

type Service struct {
	log  *zap.Logger
	repo *repository.Repository
}

func New(p Params) domain.Ledger {
	return &Service{
		log:  p.Log.Named("stock.ledger"),
		repo: p.Repo,
	}
}

// Apply adds delta to the item's stock record, seeding a missing record at
// delta. Negative results are valid (oversold).
func (s *Service) Apply(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID, delta decimal.Decimal) (decimal.Decimal, error) {
	quantity, err := s.repo.Increment(ctx, db, restaurantID, menuItemID, delta)
	if err != nil {
		return decimal.Zero, err
	}

	s.log.Debug("stock delta applied",
		zap.String("menu_item_id", menuItemID.String()),
		zap.String("delta", delta.String()),
		zap.String("quantity", quantity.String()),
	)
	return quantity, nil
}

// Quantity reports the current counter; a missing record reads as zero.
func (s *Service) Quantity(ctx context.Context, db *gorm.DB, restaurantID, menuItemID snowflake.ID) (decimal.Decimal, error) {
	quantity, _, err := s.repo.Find(ctx, db, restaurantID, menuItemID)
	return quantity, err
}
