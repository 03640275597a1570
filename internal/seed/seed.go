package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/auth/password"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	"gorm.io/gorm"
)

const (
	defaultRestaurantName = "Main"
	defaultRestaurantSlug = "main"
	defaultAdminUsername  = "admin"
	defaultAdminPassword  = "comanda-admin"
	defaultAdminDisplay   = "Comanda Admin"
)

// EnsureDefaultRestaurant seeds the default restaurant and a cashier admin so
// a fresh install is usable without manual setup.
func EnsureDefaultRestaurant(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureDefaultRestaurantWithID seeds the default restaurant under a fixed ID.
func EnsureDefaultRestaurantWithID(db *gorm.DB, id int64) error {
	return ensure(db, snowflake.ID(id))
}

func ensure(db *gorm.DB, fixedID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restaurant, err := ensureRestaurantTx(ctx, tx, node, fixedID)
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, restaurant.ID)
	})
}

func ensureRestaurantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, fixedID snowflake.ID) (*menudomain.Restaurant, error) {
	var existing menudomain.Restaurant
	err := tx.Raw(
		`SELECT id, name, slug, active, created_at, updated_at
		 FROM restaurants WHERE slug = ?`,
		defaultRestaurantSlug,
	).Scan(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	id := fixedID
	if id == 0 {
		id = node.Generate()
	}
	now := time.Now().UTC()
	restaurant := menudomain.Restaurant{
		ID:        id,
		Name:      defaultRestaurantName,
		Slug:      defaultRestaurantSlug,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = tx.Exec(
		`INSERT INTO restaurants (id, name, slug, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		restaurant.ID,
		restaurant.Name,
		restaurant.Slug,
		restaurant.Active,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, restaurantID snowflake.ID) error {
	var existing authdomain.User
	err := tx.Raw(
		`SELECT id, username FROM users WHERE username = ?`,
		defaultAdminUsername,
	).Scan(&existing).Error
	if err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}

	hashed, err := password.Hash(defaultAdminPassword)
	if err != nil {
		return err
	}

	userID := node.Generate()
	err = tx.Exec(
		`INSERT INTO users (id, username, display_name, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID,
		defaultAdminUsername,
		defaultAdminDisplay,
		hashed,
		time.Now().UTC(),
	).Error
	if err != nil {
		return err
	}

	return tx.Exec(
		`INSERT INTO restaurant_users (user_id, restaurant_id, role)
		 VALUES (?, ?, ?)`,
		userID,
		restaurantID,
		authdomain.RoleCashier,
	).Error
}
