package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/auth/repository"
	"github.com/smallbiznis/comanda/internal/clock"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testRestaurantID = snowflake.ID(7)

type fixture struct {
	db    *gorm.DB
	svc   domain.Service
	clock *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, conn.AutoMigrate(
		&domain.User{},
		&domain.RestaurantUser{},
		&domain.AuthToken{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		Cfg: config.Config{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(conn),
	})

	return &fixture{db: conn, svc: svc, clock: fake}
}

func (f *fixture) createUser(t *testing.T, username, pass, role string) *domain.User {
	t.Helper()
	user, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Username:     username,
		Password:     pass,
		RestaurantID: testRestaurantID,
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Username:     "ana",
		Password:     "short",
		RestaurantID: testRestaurantID,
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	_, err := f.svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Username:     "Ana",
		Password:     "password-456",
		RestaurantID: testRestaurantID,
	})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleCashier)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.NotEqual(t, pair.Access, pair.Refresh)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	_, err := f.svc.Login(context.Background(), "ana", "wrong-password")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.svc.Login(context.Background(), "nobody", "password-123")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateResolvesIdentity(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "ana", "password-123", domain.RoleCashier)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)

	identity, err := f.svc.Authenticate(context.Background(), pair.Access)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, testRestaurantID, identity.RestaurantID)
	require.Equal(t, domain.RoleCashier, identity.Role)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestAuthenticateExpiredAccess(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)
	_, err = f.svc.Authenticate(context.Background(), pair.Access)
	require.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestRefreshIssuesNewAccess(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)

	f.clock.Advance(16 * time.Minute)

	access, err := f.svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	require.NotEqual(t, pair.Access, access)

	_, err = f.svc.Authenticate(context.Background(), access)
	require.NoError(t, err)
}

func TestRefreshExpired(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "ana", "password-123", domain.RoleWaiter)

	pair, err := f.svc.Login(context.Background(), "ana", "password-123")
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.svc.Refresh(context.Background(), pair.Refresh)
	require.ErrorIs(t, err, domain.ErrAuthExpired)
}

func TestRefreshGarbageToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, domain.ErrAuthExpired)

	_, err = f.svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrAuthExpired)
}
