package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/habitoapp/habito-server/internal/logger"
)

// KVGarbageJob periodically compacts the session store. Expired sessions
// and resets vanish through their TTL, but badger only reclaims the disk
// space during value log GC.
type KVGarbageJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *KVGarbageJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideKVGarbageJob starts the compaction loop.
func ProvideKVGarbageJob(i do.Injector) (*KVGarbageJob, error) {
	kvHandle := do.MustInvoke[*KVHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(kvGCInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n, err := kvHandle.CollectGarbage(kvGCDiscard); err != nil {
					log.Warn("Session store GC failed", "error", err)
				} else if n > 0 {
					log.Info("Session store GC completed", "files_rewritten", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session store GC job started", "interval", kvGCInterval)

	return &KVGarbageJob{cancel: cancel}, nil
}
