package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) CreateUser(ctx context.Context, user *domain.User, binding *domain.RestaurantUser) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(
			`INSERT INTO users (id, username, display_name, password_hash, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			user.ID,
			user.Username,
			user.DisplayName,
			user.PasswordHash,
			user.CreatedAt,
		).Error
		if err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO restaurant_users (user_id, restaurant_id, role)
			 VALUES (?, ?, ?)`,
			binding.UserID,
			binding.RestaurantID,
			binding.Role,
		).Error
	})
}

func (r *repo) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, username, display_name, password_hash, created_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindBinding(ctx context.Context, userID snowflake.ID) (*domain.RestaurantUser, error) {
	var binding domain.RestaurantUser
	err := r.db.WithContext(ctx).Raw(
		`SELECT user_id, restaurant_id, role
		 FROM restaurant_users WHERE user_id = ?`,
		userID,
	).Scan(&binding).Error
	if err != nil {
		return nil, err
	}
	if binding.UserID == 0 {
		return nil, nil
	}
	return &binding, nil
}

func (r *repo) InsertToken(ctx context.Context, token *domain.AuthToken) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO auth_tokens (id, user_id, kind, token_hash, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		token.ID,
		token.UserID,
		token.Kind,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	).Error
}

func (r *repo) FindTokenByHash(ctx context.Context, kind, hash string) (*domain.AuthToken, error) {
	var token domain.AuthToken
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, user_id, kind, token_hash, expires_at, created_at
		 FROM auth_tokens WHERE kind = ? AND token_hash = ?`,
		kind,
		hash,
	).Scan(&token).Error
	if err != nil {
		return nil, err
	}
	if token.ID == 0 {
		return nil, nil
	}
	return &token, nil
}

func (r *repo) DeleteExpiredTokens(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(
		`DELETE FROM auth_tokens WHERE expires_at < ?`,
		time.Now().UTC(),
	).Error
}
