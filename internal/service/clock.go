package service

import (
	"context"
	"math/rand/v2"
	"time"
)

// utcNow is the default clock of every service. Tests replace the now
// field of a service to control time.
func utcNow() time.Time {
	return time.Now().UTC()
}

// jitter returns a duration in [limit/2, limit].
func jitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	half := limit / 2
	return half + rand.N(limit-half+1)
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// padUntil sleeps for whatever is left of floor since start.
func padUntil(ctx context.Context, sleep func(context.Context, time.Duration), now func() time.Time, start time.Time, floor time.Duration) {
	sleep(ctx, floor-now().Sub(start))
}
