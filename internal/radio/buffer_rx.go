// Package radio implements the L0 radio substrate: the sample-clocked
// ring buffer RX drivers write into and PHY workers read from, the TX
// buffer handshake pool, and the HwDevice abstraction over real and
// virtual hardware.
package radio

import (
	"sync"
	"sync/atomic"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// BufferRx is a per-antenna ring buffer: a single driver thread calls
// GetAntStreamsNext(ts, n) to advance write pointers, atomically
// publishing RxTimePassed64 = ts + n - 1. Readers call WaitUntilNTO,
// which blocks until RxTimePassed64 reaches the requested target.
type BufferRx struct {
	lengthSlots      int
	samplesPerSlot   int
	length           int // lengthSlots * samplesPerSlot, ring capacity in samples

	streams [][]complex64 // per antenna

	rxTimePassed64 atomic.Int64 // highest sample index written so far (inclusive)

	mu   sync.Mutex
	cond *sync.Cond

	notificationPeriodSamples int64
	lastNotifyAt              int64

	prestreaming bool
}

// NewBufferRx allocates a ring sized for nofAntennas streams of
// lengthSlots*samplesPerSlot complex samples each.
func NewBufferRx(nofAntennas, lengthSlots, samplesPerSlot int, notificationPeriodUs, sampleRateHz int64) *BufferRx {
	common.Assert(nofAntennas > 0, "radio: BufferRx needs at least one antenna")
	common.Assert(lengthSlots > 0 && samplesPerSlot > 0, "radio: BufferRx dimensions must be positive")

	b := &BufferRx{
		lengthSlots:    lengthSlots,
		samplesPerSlot: samplesPerSlot,
		length:         lengthSlots * samplesPerSlot,
		streams:        make([][]complex64, nofAntennas),
	}
	for i := range b.streams {
		b.streams[i] = make([]complex64, b.length)
	}
	b.cond = sync.NewCond(&b.mu)
	if sampleRateHz > 0 {
		b.notificationPeriodSamples = notificationPeriodUs * sampleRateHz / 1_000_000
	}
	if b.notificationPeriodSamples <= 0 {
		b.notificationPeriodSamples = 1
	}
	b.rxTimePassed64.Store(-1)
	return b
}

// PreStream marks the buffer as warming up: GetAntStreamsNext still
// writes samples but RxTimePassed64 does not advance, so no reader sees
// the warm-up data as valid.
func (b *BufferRx) PreStream(enabled bool) {
	b.mu.Lock()
	b.prestreaming = enabled
	b.mu.Unlock()
}

// GetAntStreamsNext is called by exactly one driver thread: it writes n
// samples (one slice per antenna, each length n) starting at absolute
// sample index ts into the ring, then advances the published write
// timestamp and wakes waiters if the notification cadence has elapsed.
func (b *BufferRx) GetAntStreamsNext(ts int64, samplesPerAntenna [][]complex64) {
	common.Assert(len(samplesPerAntenna) == len(b.streams), "radio: BufferRx antenna count mismatch")

	n := 0
	if len(samplesPerAntenna) > 0 {
		n = len(samplesPerAntenna[0])
	}

	for a, samples := range samplesPerAntenna {
		common.Assert(len(samples) == n, "radio: BufferRx ragged antenna write")
		for i, s := range samples {
			idx := (ts + int64(i)) % int64(b.length)
			b.streams[a][idx] = s
		}
	}

	b.mu.Lock()
	prestreaming := b.prestreaming
	b.mu.Unlock()
	if prestreaming || n == 0 {
		return
	}

	newPassed := ts + int64(n) - 1
	b.rxTimePassed64.Store(newPassed)

	if newPassed-b.lastNotifyAt >= b.notificationPeriodSamples {
		b.lastNotifyAt = newPassed
		b.mu.Lock()
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

// RxTimePassed64 returns the most recently published write timestamp.
func (b *BufferRx) RxTimePassed64() int64 {
	return b.rxTimePassed64.Load()
}

// WaitUntilNTO blocks until RxTimePassed64 >= target64 ("nto": not to
// overtake the reader past data that hasn't been written yet).
func (b *BufferRx) WaitUntilNTO(target64 int64) {
	if b.rxTimePassed64.Load() >= target64 {
		return
	}
	b.mu.Lock()
	for b.rxTimePassed64.Load() < target64 {
		b.cond.Wait()
	}
	b.mu.Unlock()
}

// GetAntStreams returns read-only access to antenna a's ring; callers
// index it by time64 % Length().
func (b *BufferRx) GetAntStreams(a int) []complex64 {
	return b.streams[a]
}

// Length is the ring capacity in samples.
func (b *BufferRx) Length() int { return b.length }

// NofAntennas reports how many antenna streams this buffer carries.
func (b *BufferRx) NofAntennas() int { return len(b.streams) }
