package payment

import (
	"github.com/smallbiznis/comanda/internal/payment/repository"
	"github.com/smallbiznis/comanda/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.processor",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
