package stock

import (
	"github.com/smallbiznis/comanda/internal/stock/repository"
	"github.com/smallbiznis/comanda/internal/stock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stock.ledger",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
