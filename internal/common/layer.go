package common

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LayerUnit is a single small interface every thread-owning unit (one
// hardware's radio driver, one worker pool, one tpoint) satisfies.
type LayerUnit interface {
	// StartThreads spawns the unit's goroutines, registering them on g so
	// Layer.Stop can join everything with one errgroup.Wait.
	StartThreads(ctx context.Context, g *errgroup.Group) error
	// WorkStop signals the unit's goroutines to return promptly; it must
	// not block.
	WorkStop()
}

// Layer owns a homogeneous set of LayerUnits (e.g. all radio hardwares, all
// worker pools) and starts/stops them together. cmd/dectnrp builds two
// Layer instances at startup: Layer[*radio.DeviceUnit] and
// Layer[*phy.WorkerPool].
type Layer[T LayerUnit] struct {
	Units []T

	ctx    context.Context
	cancel context.CancelFunc
	g      *errgroup.Group
}

// Start launches every unit's threads under one errgroup, so a goroutine
// that returns an error cancels the shared context. A panic in one of those
// goroutines is not recovered here and ends the process.
func (l *Layer[T]) Start(parent context.Context) error {
	l.ctx, l.cancel = context.WithCancel(parent)
	g, ctx := errgroup.WithContext(l.ctx)
	l.g = g
	for _, u := range l.Units {
		if err := u.StartThreads(ctx, g); err != nil {
			l.cancel()
			return err
		}
	}
	return nil
}

// Stop signals every unit, cancels the shared context, then joins. Call
// order across layers (tpoint -> worker_pool -> hw) is the caller's
// responsibility.
func (l *Layer[T]) Stop() error {
	for _, u := range l.Units {
		u.WorkStop()
	}
	if l.cancel != nil {
		l.cancel()
	}
	if l.g == nil {
		return nil
	}
	return l.g.Wait()
}
