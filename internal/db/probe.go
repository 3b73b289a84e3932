package db

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartAvailabilityProbe pings the store every interval and records the
// outcome on h. Transitions between available and unavailable are logged.
// The probe stops when ctx is cancelled. The sentinel handle is never probed.
func StartAvailabilityProbe(
	ctx context.Context,
	h *Handle,
	interval time.Duration,
	log *zap.Logger,
) {
	if h == nil || h.DB == nil {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probe(ctx, h, interval, log)
			}
		}
	}()
}

func probe(ctx context.Context, h *Handle, timeout time.Duration, log *zap.Logger) {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := h.DB.PingContext(pctx)
	ok := err == nil
	if prev := h.setAvailable(ok); prev == ok {
		return
	}
	if ok {
		log.Info("store available", zap.String("driver", h.Driver))
		return
	}
	log.Error("store unavailable", zap.String("driver", h.Driver), zap.Error(err))
}
