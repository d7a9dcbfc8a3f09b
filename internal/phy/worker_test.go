package phy

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dectnrp/dectnrp-go/internal/radio"
	"github.com/dectnrp/dectnrp-go/internal/tpoint"
)

type stubTicker struct {
	calls atomic.Int64
}

func (s *stubTicker) WorkRegular(now64 int64) tpoint.MachighPhy {
	s.calls.Add(1)
	return tpoint.MachighPhy{}
}

// TestWorkerPoolServicesPublishedSlots checks that a single-worker pool
// calls WorkRegular once BufferRx publishes the first slot's samples, and
// stops promptly when its context is cancelled even
// though BufferRx itself never observes the cancellation.
func TestWorkerPoolServicesPublishedSlots(t *testing.T) {
	const samplesPerSlot = 4
	rx := radio.NewBufferRx(1, 4, samplesPerSlot, 1, 1_000_000)
	tick := &stubTicker{}
	wp := NewWorkerPool("test", 1, samplesPerSlot, rx, nil, tick, nil)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	if err := wp.StartThreads(gctx, g); err != nil {
		t.Fatalf("StartThreads returned an error: %v", err)
	}

	rx.GetAntStreamsNext(0, [][]complex64{make([]complex64, samplesPerSlot)})

	deadline := time.Now().Add(time.Second)
	for tick.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if tick.calls.Load() == 0 {
		t.Fatalf("WorkRegular was never called after a slot was published")
	}

	wp.WorkStop()
	cancel()
	if err := g.Wait(); err != nil {
		t.Fatalf("g.Wait() returned an error: %v", err)
	}
}

// TestWorkerPoolDispatchHonorsOrdering checks that a TX descriptor is
// actually scheduled into the BufferTxPool and that the pool's first
// assigned order ID advances exactly once per admitted descriptor.
func TestWorkerPoolDispatchHonorsOrdering(t *testing.T) {
	const samplesPerSlot = 4
	rx := radio.NewBufferRx(1, 4, samplesPerSlot, 1, 1_000_000)
	txPool := radio.NewBufferTxPool(1, 1, 16, 0)
	wp := NewWorkerPool("test", 1, samplesPerSlot, rx, txPool, &stubTicker{}, nil)

	wp.dispatch(tpoint.MachighPhy{TxDescriptors: []tpoint.TxDescriptor{{
		BufferTxMeta: tpoint.BufferTxMeta{TxOrderID: 0, TxTime64: 0},
	}}})

	if got := txPool.NextOrderID(); got != 1 {
		t.Fatalf("NextOrderID() = %d, want 1 after one admitted descriptor", got)
	}
}
