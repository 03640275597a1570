package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	Login(ctx context.Context, username, password string) (TokenPair, error)
	// Refresh exchanges a valid refresh token for a fresh access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (Identity, error)
}

type Repository interface {
	CreateUser(ctx context.Context, user *User, binding *RestaurantUser) error
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	FindBinding(ctx context.Context, userID snowflake.ID) (*RestaurantUser, error)

	InsertToken(ctx context.Context, token *AuthToken) error
	FindTokenByHash(ctx context.Context, kind, hash string) (*AuthToken, error)
	DeleteExpiredTokens(ctx context.Context) error
}
