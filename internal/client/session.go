package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	"go.uber.org/zap"
)

var (
	// ErrUnreachable means the backend could not be reached at all. Callers
	// keep serving the last cached state when they see it.
	ErrUnreachable = errors.New("backend unreachable")
	// ErrAuthExpired means both the access token and the refresh token are
	// spent. The terminal has to log in again.
	ErrAuthExpired = errors.New("session expired")
	// ErrRemote wraps any non-2xx response that is not an auth failure.
	ErrRemote = errors.New("request rejected")
)

// Session is one terminal's connection to the backend. It owns the token
// pair, transparently retries an expired access token exactly once through
// the refresh endpoint, and caches the active card list between polls. All
// methods are safe for concurrent use.
type Session struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger

	mu      sync.Mutex
	access  string
	refresh string

	cacheMu sync.Mutex
	cards   []tabdomain.TabDetail
	fresh   bool
}

func NewSession(baseURL string, log *zap.Logger) *Session {
	return &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log.Named("client.session"),
	}
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Login obtains a fresh token pair and resets the cache.
func (s *Session) Login(ctx context.Context, username, password string) error {
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/token/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned %d", ErrRemote, resp.StatusCode)
	}

	var pair tokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return err
	}

	s.mu.Lock()
	s.access = pair.Access
	s.refresh = pair.Refresh
	s.mu.Unlock()
	s.invalidate()
	return nil
}

// LoggedIn reports whether the session currently holds an access token.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access != ""
}

// refreshAccess trades the refresh token for a new access token. Failure at
// this point is terminal for the session: both tokens are dropped.
func (s *Session) refreshAccess(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refresh
	s.mu.Unlock()
	if refresh == "" {
		return ErrAuthExpired
	}

	body, _ := json.Marshal(map[string]string{"refresh": refresh})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/token/refresh/", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.mu.Lock()
		s.access = ""
		s.refresh = ""
		s.mu.Unlock()
		return ErrAuthExpired
	}

	var out struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}

	s.mu.Lock()
	s.access = out.Access
	s.mu.Unlock()
	return nil
}

// do sends one authenticated request. On a 401 it refreshes the access token
// and retries exactly once; a second 401 surfaces as ErrAuthExpired.
func (s *Session) do(ctx context.Context, method, path string, payload, out any) error {
	resp, err := s.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if err := s.refreshAccess(ctx); err != nil {
			return err
		}
		resp, err = s.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			s.mu.Lock()
			s.access = ""
			s.refresh = ""
			s.mu.Unlock()
			return ErrAuthExpired
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d", ErrRemote, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Session) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.mu.Lock()
	access := s.access
	s.mu.Unlock()
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func (s *Session) invalidate() {
	s.cacheMu.Lock()
	s.fresh = false
	s.cacheMu.Unlock()
}

// Cards returns the active card list. It serves the cached copy until a
// mutation or a poll invalidates it; pass force to bypass the cache.
func (s *Session) Cards(ctx context.Context, force bool) ([]tabdomain.TabDetail, error) {
	s.cacheMu.Lock()
	if s.fresh && !force {
		cached := s.cards
		s.cacheMu.Unlock()
		return cached, nil
	}
	s.cacheMu.Unlock()

	var out struct {
		Cards []tabdomain.TabDetail `json:"cards"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/cards", nil, &out); err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cards = out.Cards
	s.fresh = true
	s.cacheMu.Unlock()
	return out.Cards, nil
}

// CachedCards returns whatever the session last saw, even when the backend is
// down. The bool reports whether the copy is considered current.
func (s *Session) CachedCards() ([]tabdomain.TabDetail, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.cards, s.fresh
}

func (s *Session) MenuItems(ctx context.Context) ([]menudomain.MenuItem, error) {
	var out struct {
		MenuItems []menudomain.MenuItem `json:"menu_items"`
	}
	if err := s.do(ctx, http.MethodGet, "/api/menu-items", nil, &out); err != nil {
		return nil, err
	}
	return out.MenuItems, nil
}

func (s *Session) OpenCard(ctx context.Context) (tabdomain.Tab, error) {
	var tab tabdomain.Tab
	if err := s.do(ctx, http.MethodPost, "/api/cards", struct{}{}, &tab); err != nil {
		return tabdomain.Tab{}, err
	}
	s.invalidate()
	return tab, nil
}

func (s *Session) Card(ctx context.Context, cardID snowflake.ID) (tabdomain.TabDetail, error) {
	var detail tabdomain.TabDetail
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("/api/cards/%d", cardID), nil, &detail)
	return detail, err
}

func (s *Session) AddItem(ctx context.Context, cardID, menuItemID snowflake.ID, quantity decimal.Decimal) (tabdomain.TabLine, error) {
	payload := map[string]any{
		"menu_item_id": menuItemID,
		"quantity":     quantity,
	}
	var line tabdomain.TabLine
	if err := s.do(ctx, http.MethodPost, fmt.Sprintf("/api/cards/%d/items", cardID), payload, &line); err != nil {
		return tabdomain.TabLine{}, err
	}
	s.invalidate()
	return line, nil
}

func (s *Session) RemoveItem(ctx context.Context, cardID, lineID snowflake.ID) error {
	if err := s.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cards/%d/items/%d", cardID, lineID), nil, nil); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Session) SetItemReady(ctx context.Context, cardID, lineID snowflake.ID, ready bool) error {
	payload := map[string]any{"ready": ready}
	if err := s.do(ctx, http.MethodPatch, fmt.Sprintf("/api/cards/%d/items/%d/ready", cardID, lineID), payload, nil); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Session) Pay(ctx context.Context, cardID snowflake.ID, method string, tendered *decimal.Decimal, notes string) (paymentdomain.Payment, error) {
	payload := map[string]any{
		"card_id":        cardID,
		"payment_method": method,
		"notes":          notes,
	}
	if tendered != nil {
		payload["paid_amount"] = *tendered
	}
	var payment paymentdomain.Payment
	if err := s.do(ctx, http.MethodPost, "/api/card-payments", payload, &payment); err != nil {
		return paymentdomain.Payment{}, err
	}
	s.invalidate()
	return payment, nil
}

// Run polls the card list on the given interval until ctx is done. A failed
// tick leaves the cache alone and is retried on the next tick, so a backend
// restart costs at most one interval of staleness. Only an auth failure stops
// the loop.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Cards(ctx, true); err != nil {
				if errors.Is(err, ErrAuthExpired) {
					return err
				}
				s.log.Warn("poll failed", zap.Error(err))
			}
		}
	}
}
