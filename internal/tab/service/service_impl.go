package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/comanda/internal/clock"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	"github.com/smallbiznis/comanda/internal/restaurantctx"
	stockdomain "github.com/smallbiznis/comanda/internal/stock/domain"
	"github.com/smallbiznis/comanda/internal/tab/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	MenuRepo menudomain.Repository
	Ledger   stockdomain.Ledger
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	menuRepo menudomain.Repository
	ledger   stockdomain.Ledger
}

func New(p Params) domain.Store {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("tab.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		menuRepo: p.MenuRepo,
		ledger:   p.Ledger,
	}
}

func (s *Service) Open(ctx context.Context) (domain.Tab, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.Tab{}, domain.ErrInvalidRestaurant
	}

	now := s.clock.Now()
	tab := domain.Tab{
		ID:           s.genID.Generate(),
		RestaurantID: restaurantID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &tab); err != nil {
		return domain.Tab{}, err
	}

	s.log.Info("tab opened",
		zap.String("tab_id", tab.ID.String()),
		zap.Int64("number", tab.Number),
	)
	return tab, nil
}

// AddLine captures the menu item's current price into the new line and applies
// the matching stock decrement. Both happen in one transaction; a half-applied
// line is a bug this method must make impossible.
func (s *Service) AddLine(ctx context.Context, tabID, menuItemID snowflake.ID, quantity decimal.Decimal) (domain.TabLine, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.TabLine{}, domain.ErrInvalidRestaurant
	}
	if !quantity.IsPositive() {
		return domain.TabLine{}, domain.ErrInvalidQuantity
	}

	var line domain.TabLine
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.repo.Find(ctx, tx, restaurantID, tabID)
		if err != nil {
			return err
		}
		if tab == nil {
			return domain.ErrTabNotFound
		}
		if !tab.Active {
			return domain.ErrTabClosed
		}

		item, err := s.menuRepo.FindItem(ctx, tx, restaurantID, menuItemID)
		if err != nil {
			return err
		}
		if item == nil || !item.Available {
			return menudomain.ErrMenuItemUnavailable
		}

		line = domain.TabLine{
			ID:           s.genID.Generate(),
			TabID:        tab.ID,
			RestaurantID: restaurantID,
			MenuItemID:   item.ID,
			Quantity:     quantity,
			Price:        item.Price,
			CreatedAt:    s.clock.Now(),
		}
		if err := s.repo.InsertLine(ctx, tx, &line); err != nil {
			return err
		}

		_, err = s.ledger.Apply(ctx, tx, restaurantID, item.ID, quantity.Neg())
		return err
	})
	if err != nil {
		return domain.TabLine{}, err
	}
	return line, nil
}

// RemoveLine restores the line's stock and deletes it in one transaction.
func (s *Service) RemoveLine(ctx context.Context, tabID, lineID snowflake.ID) error {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.ErrInvalidRestaurant
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tab, err := s.repo.Find(ctx, tx, restaurantID, tabID)
		if err != nil {
			return err
		}
		if tab == nil {
			return domain.ErrTabNotFound
		}
		if !tab.Active {
			return domain.ErrTabClosed
		}

		line, err := s.repo.FindLine(ctx, tx, tab.ID, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrLineNotFound
		}

		if _, err := s.ledger.Apply(ctx, tx, restaurantID, line.MenuItemID, line.Quantity); err != nil {
			return err
		}
		return s.repo.DeleteLine(ctx, tx, tab.ID, line.ID)
	})
}

func (s *Service) SetLineReady(ctx context.Context, tabID, lineID snowflake.ID, ready bool) error {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.ErrInvalidRestaurant
	}

	tab, err := s.repo.Find(ctx, s.db, restaurantID, tabID)
	if err != nil {
		return err
	}
	if tab == nil {
		return domain.ErrTabNotFound
	}

	updated, err := s.repo.SetLineReady(ctx, s.db, tab.ID, lineID, ready)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrLineNotFound
	}
	return nil
}

func (s *Service) Total(ctx context.Context, tabID snowflake.ID) (decimal.Decimal, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return decimal.Zero, domain.ErrInvalidRestaurant
	}

	tab, err := s.repo.Find(ctx, s.db, restaurantID, tabID)
	if err != nil {
		return decimal.Zero, err
	}
	if tab == nil {
		return decimal.Zero, domain.ErrTabNotFound
	}

	lines, err := s.repo.ListLines(ctx, s.db, tab.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return sumLines(lines), nil
}

func (s *Service) Get(ctx context.Context, tabID snowflake.ID) (domain.TabDetail, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return domain.TabDetail{}, domain.ErrInvalidRestaurant
	}

	tab, err := s.repo.Find(ctx, s.db, restaurantID, tabID)
	if err != nil {
		return domain.TabDetail{}, err
	}
	if tab == nil {
		return domain.TabDetail{}, domain.ErrTabNotFound
	}
	return s.detail(ctx, *tab)
}

func (s *Service) ListActive(ctx context.Context) ([]domain.TabDetail, error) {
	restaurantID, ok := restaurantctx.RestaurantIDFromContext(ctx)
	if !ok || restaurantID == 0 {
		return nil, domain.ErrInvalidRestaurant
	}

	tabs, err := s.repo.ListActive(ctx, s.db, restaurantID)
	if err != nil {
		return nil, err
	}

	details := make([]domain.TabDetail, 0, len(tabs))
	for _, tab := range tabs {
		if tab == nil {
			continue
		}
		detail, err := s.detail(ctx, *tab)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *Service) detail(ctx context.Context, tab domain.Tab) (domain.TabDetail, error) {
	lines, err := s.repo.ListLines(ctx, s.db, tab.ID)
	if err != nil {
		return domain.TabDetail{}, err
	}

	detail := domain.TabDetail{
		Tab:   tab,
		Lines: make([]domain.TabLine, 0, len(lines)),
		Total: sumLines(lines),
	}
	for _, line := range lines {
		if line == nil {
			continue
		}
		detail.Lines = append(detail.Lines, *line)
	}
	return detail, nil
}

func sumLines(lines []*domain.TabLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		if line == nil {
			continue
		}
		total = total.Add(line.Subtotal())
	}
	return total
}
