package lock

import (
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/comanda/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideClient(cfg config.Config, log *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, close-locks disabled")
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}

var Module = fx.Module("lock",
	fx.Provide(provideClient),
	fx.Provide(NewLocker),
)
