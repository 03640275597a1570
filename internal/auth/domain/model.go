package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleWaiter  = "waiter"
	RoleCashier = "cashier"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName  string       `json:"display_name"`
	PasswordHash string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// RestaurantUser binds a terminal user to exactly one restaurant with a role.
// The binding is what scopes every API call to a single tenant.
type RestaurantUser struct {
	UserID       snowflake.ID `gorm:"primaryKey" json:"user_id"`
	RestaurantID snowflake.ID `gorm:"not null;index" json:"restaurant_id"`
	Role         string       `gorm:"not null" json:"role"`
}

// AuthToken stores one issued credential. Only the sha256 of the raw token is
// persisted; the raw value travels to the terminal once and is never stored.
type AuthToken struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Kind      string       `gorm:"not null" json:"kind"`
	TokenHash string       `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TokenPair is returned by a successful login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID       snowflake.ID
	RestaurantID snowflake.ID
	Role         string
}

type CreateUserRequest struct {
	Username     string
	Password     string
	DisplayName  string
	RestaurantID snowflake.ID
	Role         string
}
