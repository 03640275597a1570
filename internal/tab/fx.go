package tab

import (
	"github.com/smallbiznis/comanda/internal/tab/repository"
	"github.com/smallbiznis/comanda/internal/tab/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tab.store",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
