package worker

// sweep_cron.go
// Background goroutine that periodically registers expiration records for
// batches whose fecha_vencimiento has passed. A Redis lock keeps multiple
// instances from sweeping at once; the sweep itself is idempotent anyway.

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	sweepTickInterval = 1 * time.Hour
	sweepLockKey      = "lock:vencimientos"
	sweepLockTTL      = 5 * time.Minute
)

// VencimientoSweeper is implemented by the stock service.
type VencimientoSweeper interface {
	RegistrarVencimientos(ctx context.Context) (int, error)
}

// StartSweepCron launches the expiration sweep goroutine. It runs once at
// startup and then on every tick, and respects ctx for graceful shutdown.
func StartSweepCron(ctx context.Context, rdb *redis.Client, sweeper VencimientoSweeper) {
	go func() {
		ticker := time.NewTicker(sweepTickInterval)
		defer ticker.Stop()

		log.Info().Msg("sweep_cron: started")
		runSweep(ctx, rdb, sweeper)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweep_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, rdb, sweeper)
			}
		}
	}()
}

func runSweep(ctx context.Context, rdb *redis.Client, sweeper VencimientoSweeper) {
	if rdb != nil {
		ok, err := rdb.SetNX(ctx, sweepLockKey, "1", sweepLockTTL).Result()
		if err != nil {
			log.Warn().Err(err).Msg("sweep_cron: lock unavailable, sweeping anyway")
		} else if !ok {
			log.Debug().Msg("sweep_cron: another instance holds the lock")
			return
		}
	}

	n, err := sweeper.RegistrarVencimientos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep_cron: sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int("registrados", n).Msg("sweep_cron: vencimientos registrados")
	}
}
