package migration

import (
	authdomain "github.com/smallbiznis/comanda/internal/auth/domain"
	"github.com/smallbiznis/comanda/internal/config"
	menudomain "github.com/smallbiznis/comanda/internal/menu/domain"
	paymentdomain "github.com/smallbiznis/comanda/internal/payment/domain"
	"github.com/smallbiznis/comanda/internal/seed"
	stockdomain "github.com/smallbiznis/comanda/internal/stock/domain"
	tabdomain "github.com/smallbiznis/comanda/internal/tab/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite/mysql dev setups skip versioned migrations.
			err := conn.AutoMigrate(
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
			)
			if err != nil {
				return err
			}
		}

		if cfg.DefaultRestaurantID != 0 {
			return seed.EnsureDefaultRestaurantWithID(conn, cfg.DefaultRestaurantID)
		}
		return seed.EnsureDefaultRestaurant(conn)
	}),
)
