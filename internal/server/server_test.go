package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	authrepo "github.com/smallbiznis/comanda/internal/auth/repository"
	authservice "github.com/smallbiznis/comanda/internal/auth/service"
	"github.com/smallbiznis/comanda/internal/clock"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/smallbiznis/comanda/internal/lock"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	menurepo "github.com/smallbiznis/comanda/internal/menu/repository"
	menuservice "github.com/smallbiznis/comanda/internal/menu/service"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/comanda/internal/payment/repository"
	paymentservice "github.com/smallbiznis/comanda/internal/payment/service"
	"github.com/smallbiznis/comanda/internal/providers/receipt"
	stockdomain "github.com/smallbiznis/comanda/internal/stock/domain"
	stockrepo "github.com/smallbiznis/comanda/internal/stock/repository"
	stockservice "github.com/smallbiznis/comanda/internal/stock/service"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	tabrepo "github.com/smallbiznis/comanda/internal/tab/repository"
	tabservice "github.com/smallbiznis/comanda/internal/tab/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	db           *gorm.DB
	srv          *httptest.Server
	node         *snowflake.Node
	restaurantID snowflake.ID
	access       string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&menudomain.Restaurant{},
		&menudomain.Category{},
		&menudomain.MenuItem{},
		&stockdomain.StockRecord{},
		&tabdomain.Tab{},
		&tabdomain.TabLine{},
		&paymentdomain.Payment{},
		&authdomain.User{},
		&authdomain.RestaurantUser{},
		&authdomain.AuthToken{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		HTTPAddr:        ":0",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	log := zap.NewNop()
	clk := clock.NewSystemClock()

	restaurant := menudomain.Restaurant{ID: node.Generate(), Name: "Boteco", Slug: "boteco", Active: true}
	require.NoError(t, conn.Create(&restaurant).Error)

	authSvc := authservice.New(authservice.Params{
		Cfg: cfg, Log: log, GenID: node, Clock: clk,
		Repo: authrepo.Provide(conn),
	})
	_, err = authSvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Username:     "ana",
		Password:     "password-123",
		RestaurantID: restaurant.ID,
		Role:         authdomain.RoleCashier,
	})
	require.NoError(t, err)

	menuSvc := menuservice.New(menuservice.Params{DB: conn, Log: log, Repo: menurepo.Provide()})
	ledger := stockservice.New(stockservice.Params{Log: log, Repo: stockrepo.Provide()})
	tabStore := tabservice.New(tabservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk,
		Repo: tabrepo.Provide(), MenuRepo: menurepo.Provide(), Ledger: ledger,
	})
	holder, err := config.NewPaymentConfigHolder()
	require.NoError(t, err)
	processor := paymentservice.New(paymentservice.Params{
		DB: conn, Log: log, GenID: node, Clock: clk,
		Repo: paymentrepo.Provide(), TabRepo: tabrepo.Provide(), PayConfig: holder,
	})

	s := NewServer(Params{
		Cfg: cfg, Log: log,
		AuthSvc:   authSvc,
		MenuSvc:   menuSvc,
		TabStore:  tabStore,
		Processor: processor,
		Receipts:  receipt.New(),
		Locker:    lock.NewLocker(nil),
	})

	engine := gin.New()
	s.RegisterRoutes(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	e := &env{db: conn, srv: srv, node: node}
	e.restaurantID = restaurant.ID
	return e
}

func (e *env) login(t *testing.T) {
	t.Helper()
	resp := e.request(t, http.MethodPost, "/token/", `{"username":"ana","password":"password-123"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	e.access = pair.Access
}

func (e *env) request(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if e.access != "" {
		req.Header.Set("Authorization", "Bearer "+e.access)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (e *env) seedItem(t *testing.T, name, price string) menudomain.MenuItem {
	t.Helper()
	item := menudomain.MenuItem{
		ID:           e.node.Generate(),
		RestaurantID: e.restaurantID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Available:    true,
	}
	require.NoError(t, e.db.Create(&item).Error)
	return item
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	e := newEnv(t)

	resp := e.request(t, http.MethodPost, "/token/", `{"username":"ana","password":"nope"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPIRequiresBearerToken(t *testing.T) {
	e := newEnv(t)

	resp := e.request(t, http.MethodGet, "/api/cards", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCardLifecycleOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	item := e.seedItem(t, "Chopp", "12.50")

	// Open a card.
	resp := e.request(t, http.MethodPost, "/api/cards", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var card tabdomain.Tab
	decodeJSON(t, resp, &card)
	require.EqualValues(t, 1, card.Number)

	// Add two units.
	resp = e.request(t, http.MethodPost, fmt.Sprintf("/api/cards/%d/items", card.ID),
		fmt.Sprintf(`{"menu_item_id":"%d","quantity":2}`, item.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var line tabdomain.TabLine
	decodeJSON(t, resp, &line)

	// The card shows the line with captured price and total.
	resp = e.request(t, http.MethodGet, fmt.Sprintf("/api/cards/%d", card.ID), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail tabdomain.TabDetail
	decodeJSON(t, resp, &detail)
	require.Len(t, detail.Lines, 1)
	require.True(t, detail.Total.Equal(decimal.RequireFromString("25.00")))

	// Mark the line ready.
	resp = e.request(t, http.MethodPatch,
		fmt.Sprintf("/api/cards/%d/items/%d/ready", card.ID, line.ID), `{"ready":true}`)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Pay cash with change.
	resp = e.request(t, http.MethodPost, "/api/card-payments",
		fmt.Sprintf(`{"card_id":"%d","payment_method":"CA","paid_amount":"50"}`, card.ID))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var payment struct {
		Amount decimal.Decimal  `json:"amount"`
		Change *decimal.Decimal `json:"change_amount"`
	}
	decodeJSON(t, resp, &payment)
	require.True(t, payment.Amount.Equal(decimal.RequireFromString("25.00")))
	require.NotNil(t, payment.Change)
	require.True(t, payment.Change.Equal(decimal.RequireFromString("25.00")))

	// Paying the same card again conflicts.
	resp = e.request(t, http.MethodPost, "/api/card-payments",
		fmt.Sprintf(`{"card_id":"%d","payment_method":"PX"}`, card.ID))
	resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// The receipt renders as a PDF.
	resp = e.request(t, http.MethodGet, fmt.Sprintf("/api/card-payments/%d/receipt", card.ID), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}

func TestAddItemToUnknownCard(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	item := e.seedItem(t, "Chopp", "12.50")

	resp := e.request(t, http.MethodPost, fmt.Sprintf("/api/cards/%d/items", e.node.Generate()),
		fmt.Sprintf(`{"menu_item_id":"%d","quantity":1}`, item.ID))
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedCardIDReadsNotFound(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp := e.request(t, http.MethodGet, "/api/cards/not-an-id", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestZeroQuantityRejected(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	item := e.seedItem(t, "Chopp", "12.50")

	resp := e.request(t, http.MethodPost, "/api/cards", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var card tabdomain.Tab
	decodeJSON(t, resp, &card)

	resp = e.request(t, http.MethodPost, fmt.Sprintf("/api/cards/%d/items", card.ID),
		fmt.Sprintf(`{"menu_item_id":"%d","quantity":0}`, item.ID))
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserProfile(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	resp := e.request(t, http.MethodGet, "/api/user-profile", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile struct {
		Role           string `json:"role"`
		RestaurantName string `json:"restaurant_name"`
	}
	decodeJSON(t, resp, &profile)
	require.Equal(t, authdomain.RoleCashier, profile.Role)
	require.Equal(t, "Boteco", profile.RestaurantName)
}

func TestMenuItemsListsOnlyAvailable(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.seedItem(t, "Chopp", "12.50")

	hidden := menudomain.MenuItem{
		ID:           e.node.Generate(),
		RestaurantID: e.restaurantID,
		Name:         "Off menu",
		Price:        decimal.NewFromInt(1),
		Available:    false,
	}
	require.NoError(t, e.db.Create(&hidden).Error)

	resp := e.request(t, http.MethodGet, "/api/menu-items", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		MenuItems []menudomain.MenuItem `json:"menu_items"`
	}
	decodeJSON(t, resp, &out)
	require.Len(t, out.MenuItems, 1)
	require.Equal(t, "Chopp", out.MenuItems[0].Name)
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)

	resp := e.request(t, http.MethodGet, "/healthz", "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
