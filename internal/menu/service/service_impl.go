package service

import (
	"context"

	"github.com/smallbiznis/comanda/internal/menu/domain"
	"github.com/smallbiznis/comanda/internal/restaurantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("menu.service"),
		repo: p.Repo,
	}
}

func (s *Service) Restaurant(ctx context.Context) (domain.Restaurant, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.Restaurant{}, domain.ErrInvalidRestaurant
	}

	restaurant, err := s.repo.FindRestaurant(ctx, s.db, restaurantID)
	if err != nil {
		return domain.Restaurant{}, err
	}
	if restaurant == nil {
		return domain.Restaurant{}, domain.ErrInvalidRestaurant
	}
	return *restaurant, nil
}

func (s *Service) ListAvailable(ctx context.Context) ([]domain.MenuItem, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return nil, domain.ErrInvalidRestaurant
	}

	items, err := s.repo.ListAvailable(ctx, s.db, restaurantID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.MenuItem, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		result = append(result, *item)
	}
	return result, nil
}
