// Package phy implements the PHY worker-thread pool: nof_workers goroutines
// that pull chunks from BufferRx, synchronize, and decode. The goroutines
// round-robin slot ticks over one shared BufferRx, each driving a Tpoint's
// regular per-slot callback and dispatching any resulting TX descriptors
// into the BufferTxPool handshake.
//
// OFDM demapping — turning a BufferRx IQ window into PCC/PDC soft bits, and
// turning an encoded codeword back into a transmit waveform — is out of
// scope for the RF front-end internals here. WorkerPool therefore stops at
// the LLR/descriptor boundary: internal/phy/fec's round-trip tests exercise
// PCC/PDC decode directly at that boundary, and WorkerPool only proves out
// the thread-pool/timestamp-gating/dispatch contract around it.
package phy

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dectnrp/dectnrp-go/internal/common"
	"github.com/dectnrp/dectnrp-go/internal/radio"
	"github.com/dectnrp/dectnrp-go/internal/tpoint"
)

// Ticker is the subset of Tpoint a WorkerPool drives every slot.
type Ticker interface {
	WorkRegular(now64 int64) tpoint.MachighPhy
}

// WorkerPool is one configured worker_pool's nof_workers goroutines,
// sharing one BufferRx/BufferTxPool pair. It satisfies common.LayerUnit so
// cmd/dectnrp can start/stop it through a common.Layer, alongside the
// radio layer.
type WorkerPool struct {
	Name           string
	NofWorkers     int
	SamplesPerSlot int

	Rx     *radio.BufferRx
	TxPool *radio.BufferTxPool
	Tick   Ticker

	log *log.Logger

	slotsDispatched atomic.Int64
	stop            chan struct{}
}

// NewWorkerPool builds a pool bound to the shared RX/TX buffers and the
// Tpoint it drives.
func NewWorkerPool(name string, nofWorkers, samplesPerSlot int, rx *radio.BufferRx, txPool *radio.BufferTxPool, tick Ticker, logger *log.Logger) *WorkerPool {
	common.Assert(nofWorkers > 0, "phy: worker pool needs at least one worker")
	common.Assert(samplesPerSlot > 0, "phy: worker pool needs a positive slot size")
	return &WorkerPool{
		Name:           name,
		NofWorkers:     nofWorkers,
		SamplesPerSlot: samplesPerSlot,
		Rx:             rx,
		TxPool:         txPool,
		Tick:           tick,
		log:            logger,
	}
}

// StartThreads implements common.LayerUnit: one goroutine per worker,
// registered on g so Layer.Stop joins them. Each returns nil once ctx is
// cancelled or WorkStop is called; panics are not recovered.
func (w *WorkerPool) StartThreads(ctx context.Context, g *errgroup.Group) error {
	w.stop = make(chan struct{})
	for i := 0; i < w.NofWorkers; i++ {
		workerIdx := i
		g.Go(func() error {
			w.run(ctx, workerIdx)
			return nil
		})
	}
	return nil
}

// WorkStop implements common.LayerUnit.
func (w *WorkerPool) WorkStop() {
	if w.stop != nil {
		close(w.stop)
	}
}

// run owns slot ticks workerIdx, workerIdx+NofWorkers, workerIdx+2*NofWorkers,
// ... so the pool's nof_workers goroutines partition every slot exactly
// once between them.
func (w *WorkerPool) run(ctx context.Context, workerIdx int) {
	next64 := int64(workerIdx) * int64(w.SamplesPerSlot)
	for {
		if !w.waitUntilNTOOrDone(ctx, next64) {
			return
		}

		reply := w.Tick.WorkRegular(next64)
		w.dispatch(reply)
		w.slotsDispatched.Add(1)

		next64 += int64(w.NofWorkers) * int64(w.SamplesPerSlot)
	}
}

// waitUntilNTOOrDone blocks on Rx.WaitUntilNTO(target64) but also observes
// ctx/stop: BufferRx's own wait has no cancellation hook (a real driver
// keeps the sample clock advancing for as long as the process runs), so a
// shut-down worker pool would otherwise block forever once the device
// stops publishing new timestamps. Returns false if the pool should exit
// without having reached target64.
func (w *WorkerPool) waitUntilNTOOrDone(ctx context.Context, target64 int64) bool {
	if w.Rx.RxTimePassed64() >= target64 {
		return true
	}
	done := make(chan struct{})
	go func() {
		w.Rx.WaitUntilNTO(target64)
		close(done)
	}()
	for {
		select {
		case <-done:
			return true
		case <-ctx.Done():
			return false
		case <-w.stop:
			return false
		case <-time.After(50 * time.Millisecond):
			if w.Rx.RxTimePassed64() >= target64 {
				return true
			}
		}
	}
}

// dispatch reserves and schedules a BufferTx for every TxDescriptor the
// tick produced, enforcing the pool's strict TX ordering handshake. A full
// TX pool or an out-of-order descriptor is an expected, logged drop, never
// a panic.
func (w *WorkerPool) dispatch(reply tpoint.MachighPhy) {
	for _, d := range reply.TxDescriptors {
		if w.TxPool == nil {
			continue
		}
		b := w.TxPool.GetBufferTxToFill()
		if b == nil {
			if w.log != nil {
				w.log.Warn("tx buffer pool exhausted, dropping descriptor", "pool", w.Name)
			}
			continue
		}
		b.TxOrderID = d.BufferTxMeta.TxOrderID
		b.TxTime64 = d.BufferTxMeta.TxTime64
		b.BusyWait = d.BufferTxMeta.BusyWait

		if !w.TxPool.SetAllBuffersAsTransmitted(b) {
			if w.log != nil {
				w.log.Warn("tx descriptor rejected by ordering/deadline check", "pool", w.Name, "tx_order_id", b.TxOrderID)
			}
			w.TxPool.Release(b)
		}
	}
}

// SlotsDispatched reports how many slot ticks this pool has serviced, for
// diagnostics/tests.
func (w *WorkerPool) SlotsDispatched() int64 {
	return w.slotsDispatched.Load()
}
