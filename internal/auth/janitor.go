package auth

import (
	"context"
	"time"

	"github.com/smallbiznis/comanda/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const sweepInterval = time.Hour

// Janitor sweeps expired auth tokens so the table does not grow without
// bound. Expiry is always enforced at read time; the sweep is purely
// housekeeping.
type Janitor struct {
	log  *zap.Logger
	repo domain.Repository
}

func NewJanitor(log *zap.Logger, repo domain.Repository) *Janitor {
	return &Janitor{
		log:  log.Named("auth.janitor"),
		repo: repo,
	}
}

func (j *Janitor) RunForever(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.repo.DeleteExpiredTokens(ctx); err != nil {
				j.log.Warn("token sweep failed", zap.Error(err))
			}
		}
	}
}

func registerJanitor(lc fx.Lifecycle, janitor *Janitor) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go janitor.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
