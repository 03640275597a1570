package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/comanda/internal/clock"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/smallbiznis/comanda/internal/payment/domain"
	"github.com/smallbiznis/comanda/internal/restaurantctx"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	TabRepo   tabdomain.Repository
	PayConfig *config.PaymentConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	tabRepo   tabdomain.Repository
	payConfig *config.PaymentConfigHolder
}

func New(p Params) domain.Processor {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		tabRepo:   p.TabRepo,
		payConfig: p.PayConfig,
	}
}

// Close snapshots the tab total, validates the method, and closes the tab.
// The active-flag flip is a single conditional UPDATE inside the same
// transaction as the payment insert: of two concurrent close attempts exactly
// one wins the flip, the other gets ErrTabAlreadyClosed. Stock is untouched
// here; it was adjusted when each line was added.
func (s *Service) Close(ctx context.Context, req domain.CloseRequest) (domain.Payment, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.Payment{}, domain.ErrInvalidRestaurant
	}

	method, ok := s.payConfig.Method(req.Method)
	if !ok {
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	var payment domain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.tabRepo.Find(ctx, tx, restaurantID, req.TabID)
		if err != nil {
			return err
		}
		if tab == nil {
			return tabdomain.ErrTabNotFound
		}
		if !tab.Active {
			return domain.ErrTabAlreadyClosed
		}

		lines, err := s.tabRepo.ListLines(ctx, tx, tab.ID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, line := range lines {
			if line == nil {
				continue
			}
			total = total.Add(line.Subtotal())
		}

		payment = domain.Payment{
			ID:           s.genID.Generate(),
			RestaurantID: restaurantID,
			TabID:        tab.ID,
			Method:       method.Code,
			Amount:       total,
			Notes:        req.Notes,
			CreatedAt:    s.clock.Now(),
		}

		if method.NeedsChange {
			if req.Tendered == nil {
				return domain.ErrInsufficientPayment
			}
			tendered := *req.Tendered
			if tendered.LessThan(total) {
				return domain.ErrInsufficientPayment
			}
			change := tendered.Sub(total)
			payment.Tendered = &tendered
			payment.Change = &change
		}

		closed, err := s.tabRepo.CloseIfActive(ctx, tx, restaurantID, tab.ID, payment.CreatedAt)
		if err != nil {
			return err
		}
		if !closed {
			return domain.ErrTabAlreadyClosed
		}

		return s.repo.Insert(ctx, tx, &payment)
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("tab closed",
		zap.String("tab_id", payment.TabID.String()),
		zap.String("method", payment.Method),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

func (s *Service) FindByTab(ctx context.Context, tabID snowflake.ID) (domain.Payment, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.Payment{}, domain.ErrInvalidRestaurant
	}

	payment, err := s.repo.FindByTab(ctx, s.db, restaurantID, tabID)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return *payment, nil
}
