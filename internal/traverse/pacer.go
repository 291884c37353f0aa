package traverse

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer spaces consecutive oracle chunks. A token-bucket limiter with burst 1
// lets the first chunk through immediately and holds each following chunk for
// the configured interval, respecting context cancellation while waiting.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		return &pacer{}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *pacer) Wait(ctx context.Context) error {
	if p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
