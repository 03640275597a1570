package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/comanda/internal/auth"
	"github.com/smallbiznis/comanda/internal/clock"
	"github.com/smallbiznis/comanda/internal/config"
	"github.com/smallbiznis/comanda/internal/lock"
	"github.com/smallbiznis/comanda/internal/logger"
	"github.com/smallbiznis/comanda/internal/menu"
	"github.com/smallbiznis/comanda/internal/migration"
	"github.com/smallbiznis/comanda/internal/payment"
	"github.com/smallbiznis/comanda/internal/providers/receipt"
	"github.com/smallbiznis/comanda/internal/server"
	"github.com/smallbiznis/comanda/internal/stock"
	"github.com/smallbiznis/comanda/internal/tab"
	"github.com/smallbiznis/comanda/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		lock.Module,
		receipt.Module,

		menu.Module,
		stock.Module,
		tab.Module,
		payment.Module,
		auth.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
