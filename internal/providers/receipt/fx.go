package receipt

import "go.uber.org/fx"

var Module = fx.Module("providers.receipt",
	fx.Provide(New),
)
