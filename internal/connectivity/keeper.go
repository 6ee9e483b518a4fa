// Package connectivity keeps the device's network link usable without letting
// reconnect attempts stall the sampling loop.
package connectivity

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultCooldown      = 10 * time.Second
	DefaultConnectWindow = 8 * time.Second
	DefaultPollStep      = 200 * time.Millisecond
)

// Link is the network path to the collector.
type Link interface {
	Up(ctx context.Context) bool
	Reconnect(ctx context.Context) error
}

// Keeper rate-limits reconnect attempts on a Link.
// It is not safe for concurrent use; the device loop owns it.
type Keeper struct {
	link     Link
	cooldown time.Duration
	window   time.Duration
	pollStep time.Duration
	logger   *zap.SugaredLogger

	lastAttempt time.Time
	attempted   bool

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration)
}

// NewKeeper creates a Keeper. Zero durations fall back to the defaults.
func NewKeeper(link Link, cooldown, window time.Duration, logger *zap.SugaredLogger) *Keeper {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	if window <= 0 {
		window = DefaultConnectWindow
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Keeper{
		link:     link,
		cooldown: cooldown,
		window:   window,
		pollStep: DefaultPollStep,
		logger:   logger,
		Now:      time.Now,
		Sleep:    sleepCtx,
	}
}

// Ensure returns true when the link is up. A down link gets at most one reconnect
// attempt per cooldown, and that attempt waits no longer than the connect window.
func (k *Keeper) Ensure(ctx context.Context) bool {
	if k.link.Up(ctx) {
		return true
	}

	now := k.Now()
	if k.attempted && now.Sub(k.lastAttempt) < k.cooldown {
		return false
	}
	k.lastAttempt = now
	k.attempted = true

	k.logger.Infof("link down, reconnecting")

	wctx, cancel := context.WithTimeout(ctx, k.window)
	defer cancel()

	if err := k.link.Reconnect(wctx); err != nil {
		k.logger.Warnf("reconnect: %v", err)
	}

	start := k.Now()
	for {
		if k.link.Up(wctx) {
			k.logger.Infof("link up")
			return true
		}
		if wctx.Err() != nil || k.Now().Sub(start) >= k.window {
			k.logger.Warnf("reconnect failed (timeout after %s)", k.window)
			return false
		}
		k.Sleep(wctx, k.pollStep)
	}
}

// LastAttempt returns the time of the most recent reconnect attempt.
func (k *Keeper) LastAttempt() (time.Time, bool) {
	return k.lastAttempt, k.attempted
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
