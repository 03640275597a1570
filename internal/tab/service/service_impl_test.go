package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/comanda/internal/clock"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	menurepo "github.com/smallbiznis/comanda/internal/menu/repository"
	"github.com/smallbiznis/comanda/internal/restaurantctx"
	stockdomain "github.com/smallbiznis/comanda/internal/stock/domain"
	stockrepo "github.com/smallbiznis/comanda/internal/stock/repository"
	stockservice "github.com/smallbiznis/comanda/internal/stock/service"
	"github.com/smallbiznis/comanda/internal/tab/domain"
	"github.com/smallbiznis/comanda/internal/tab/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	store  domain.Store
	ledger stockdomain.Ledger
	node   *snowflake.Node
	ctx    context.Context
}

const testRestaurantID = snowflake.ID(7)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&menudomain.Restaurant{},
		&menudomain.MenuItem{},
		&stockdomain.StockRecord{},
		&domain.Tab{},
		&domain.TabLine{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ledger := stockservice.New(stockservice.Params{
		Log:  zap.NewNop(),
		Repo: stockrepo.Provide(),
	})

	store := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		Repo:     repository.Provide(),
		MenuRepo: menurepo.Provide(),
		Ledger:   ledger,
	})

	return &fixture{
		db:     conn,
		store:  store,
		ledger: ledger,
		node:   node,
		ctx:    restaurantctx.WithRestaurantID(context.Background(), testRestaurantID),
	}
}

func (f *fixture) seedItem(t *testing.T, name string, price string, available bool) menudomain.MenuItem {
	t.Helper()
	item := menudomain.MenuItem{
		ID:           f.node.Generate(),
		RestaurantID: testRestaurantID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Available:    available,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func (f *fixture) stockOf(t *testing.T, itemID snowflake.ID) decimal.Decimal {
	t.Helper()
	qty, err := f.ledger.Quantity(context.Background(), f.db, testRestaurantID, itemID)
	require.NoError(t, err)
	return qty
}

func TestOpenAssignsSequentialNumbers(t *testing.T) {
	f := newFixture(t)

	first, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Number)
	require.True(t, first.Active)

	second, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, second.Number)
}

func TestOpenNumberingRestartsWhenNoActiveTabs(t *testing.T) {
	f := newFixture(t)

	first, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, first.Number)

	// Close it out of band; numbering only looks at active tabs.
	require.NoError(t, f.db.Exec(`UPDATE tabs SET active = ? WHERE id = ?`, false, first.ID).Error)

	next, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, next.Number)
}

func TestOpenWithoutRestaurantFails(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.Open(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidRestaurant)
}

func TestAddLineCapturesPriceAndDebitsStock(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "12.50", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	line, err := f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(2))
	require.NoError(t, err)
	require.True(t, line.Price.Equal(decimal.RequireFromString("12.50")))
	require.True(t, f.stockOf(t, item.ID).Equal(decimal.NewFromInt(-2)))

	// A later menu price change never touches the captured line price.
	require.NoError(t, f.db.Exec(`UPDATE menu_items SET price = ? WHERE id = ?`, "99.00", item.ID).Error)

	total, err := f.store.Total(f.ctx, tab.ID)
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("25.00")))
}

func TestAddLineFractionalQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Picanha kg", "89.90", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.RequireFromString("0.35"))
	require.NoError(t, err)

	total, err := f.store.Total(f.ctx, tab.ID)
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.RequireFromString("31.465")))
}

func TestAddLineRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "12.50", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddLineUnavailableItem(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Feijoada", "45.00", false)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(1))
	require.ErrorIs(t, err, menudomain.ErrMenuItemUnavailable)
	require.True(t, f.stockOf(t, item.ID).IsZero())
}

func TestAddLineOtherRestaurantItemReadsUnavailable(t *testing.T) {
	f := newFixture(t)

	foreign := menudomain.MenuItem{
		ID:           f.node.Generate(),
		RestaurantID: testRestaurantID + 1,
		Name:         "Foreign",
		Price:        decimal.NewFromInt(10),
		Available:    true,
	}
	require.NoError(t, f.db.Create(&foreign).Error)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	_, err = f.store.AddLine(f.ctx, tab.ID, foreign.ID, decimal.NewFromInt(1))
	require.ErrorIs(t, err, menudomain.ErrMenuItemUnavailable)
}

func TestAddLineClosedTab(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "12.50", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	require.NoError(t, f.db.Exec(`UPDATE tabs SET active = ? WHERE id = ?`, false, tab.ID).Error)

	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(1))
	require.ErrorIs(t, err, domain.ErrTabClosed)
	require.True(t, f.stockOf(t, item.ID).IsZero())
}

func TestRemoveLineRestoresStock(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "12.50", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	line, err := f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(3))
	require.NoError(t, err)
	require.True(t, f.stockOf(t, item.ID).Equal(decimal.NewFromInt(-3)))

	require.NoError(t, f.store.RemoveLine(f.ctx, tab.ID, line.ID))
	require.True(t, f.stockOf(t, item.ID).IsZero())

	total, err := f.store.Total(f.ctx, tab.ID)
	require.NoError(t, err)
	require.True(t, total.IsZero())
}

func TestRemoveLineMissing(t *testing.T) {
	f := newFixture(t)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	err = f.store.RemoveLine(f.ctx, tab.ID, f.node.Generate())
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestTenantIsolationReadsAsNotFound(t *testing.T) {
	f := newFixture(t)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	otherCtx := restaurantctx.WithRestaurantID(context.Background(), testRestaurantID+1)
	_, err = f.store.Get(otherCtx, tab.ID)
	require.ErrorIs(t, err, domain.ErrTabNotFound)

	_, err = f.store.Total(otherCtx, tab.ID)
	require.ErrorIs(t, err, domain.ErrTabNotFound)
}

func TestListActiveIncludesLinesAndTotals(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "10.00", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	_, err = f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(2))
	require.NoError(t, err)

	details, err := f.store.ListActive(f.ctx)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Len(t, details[0].Lines, 1)
	require.Equal(t, "Chopp", details[0].Lines[0].ItemName)
	require.True(t, details[0].Total.Equal(decimal.NewFromInt(20)))
}

func TestAddLineConcurrent(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "10.00", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(1)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	detail, err := f.store.Get(f.ctx, tab.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, workers)
	require.True(t, detail.Total.Equal(decimal.NewFromInt(workers*10)))
	require.True(t, f.stockOf(t, item.ID).Equal(decimal.NewFromInt(-workers)))
}

func TestSetLineReady(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(t, "Chopp", "10.00", true)

	tab, err := f.store.Open(f.ctx)
	require.NoError(t, err)
	line, err := f.store.AddLine(f.ctx, tab.ID, item.ID, decimal.NewFromInt(1))
	require.NoError(t, err)

	require.NoError(t, f.store.SetLineReady(f.ctx, tab.ID, line.ID, true))

	detail, err := f.store.Get(f.ctx, tab.ID)
	require.NoError(t, err)
	require.True(t, detail.Lines[0].Ready)

	err = f.store.SetLineReady(f.ctx, tab.ID, f.node.Generate(), true)
	require.ErrorIs(t, err, domain.ErrLineNotFound)
}
