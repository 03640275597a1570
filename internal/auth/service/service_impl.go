package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/auth/password"
	"github.com/smallbiznis/comanda/internal/clock"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/smallbiznis/comanda/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	tokenBytes        = 32
	minPasswordLength = 8
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	cfg   config.Config
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(strings.TrimSpace(req.Password)) < minPasswordLength {
		return nil, domain.ErrInvalidCredentials
	}
	if req.RestaurantID == 0 {
		return nil, domain.ErrNoRestaurant
	}
	role := req.Role
	if role != domain.RoleWaiter && role != domain.RoleCashier {
		role = domain.RoleWaiter
	}

	existing, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserExists
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hashed,
		CreatedAt:    s.clock.Now(),
	}
	binding := &domain.RestaurantUser{
		UserID:       user.ID,
		RestaurantID: req.RestaurantID,
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user, binding); err != nil {
		// Lost the race against a concurrent signup with the same name.
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

// Login verifies the password and issues a fresh access/refresh pair. Raw
// token values leave the process exactly once, in the response.
func (s *Service) Login(ctx context.Context, username, pass string) (domain.TokenPair, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || pass == "" {
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if user == nil || !password.Verify(pass, user.PasswordHash) {
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	access, err := s.issueToken(ctx, user.ID, domain.TokenKindAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.issueToken(ctx, user.ID, domain.TokenKindRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.log.Info("terminal logged in", zap.String("user_id", user.ID.String()))
	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	raw := strings.TrimSpace(refreshToken)
	if raw == "" {
		return "", domain.ErrAuthExpired
	}

	token, err := s.repo.FindTokenByHash(ctx, domain.TokenKindRefresh, hashToken(raw))
	if err != nil {
		return "", err
	}
	if token == nil || s.clock.Now().After(token.ExpiresAt) {
		return "", domain.ErrAuthExpired
	}

	return s.issueToken(ctx, token.UserID, domain.TokenKindAccess, s.cfg.AccessTokenTTL)
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	raw := strings.TrimSpace(accessToken)
	if raw == "" {
		return domain.Identity{}, domain.ErrAuthExpired
	}

	token, err := s.repo.FindTokenByHash(ctx, domain.TokenKindAccess, hashToken(raw))
	if err != nil {
		return domain.Identity{}, err
	}
	if token == nil || s.clock.Now().After(token.ExpiresAt) {
		return domain.Identity{}, domain.ErrAuthExpired
	}

	binding, err := s.repo.FindBinding(ctx, token.UserID)
	if err != nil {
		return domain.Identity{}, err
	}
	if binding == nil {
		return domain.Identity{}, domain.ErrNoRestaurant
	}

	return domain.Identity{
		UserID:       token.UserID,
		RestaurantID: binding.RestaurantID,
		Role:         binding.Role,
	}, nil
}

func (s *Service) issueToken(ctx context.Context, userID snowflake.ID, kind string, ttl time.Duration) (string, error) {
	raw, err := newRawToken()
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	token := &domain.AuthToken{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Kind:      kind,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.repo.InsertToken(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

func newRawToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
