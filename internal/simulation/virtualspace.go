// Package simulation implements the VirtualSpace substrate: the
// in-process fabric that mediates TX->RX propagation between simulated
// radios when no real hardware is attached, using condvar-style
// wait/notify loops over a complete-graph channel fabric with a shared
// simulation clock.
package simulation

import (
	"context"
	"sync"
	"time"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// Endpoint is one simulated radio's registration with the VirtualSpace:
// its TX and RX sides are registered separately, configured during
// runtime after PHY chooses the sample rate.
type Endpoint struct {
	ID          string
	NofAntennas int

	channel NoiseChannel // intra-device TX->RX leakage path
}

// VirtualSpace gates TX/RX among every registered simulated radio behind a
// single mutex, mediating every cross-device memory access through it:
// throughput-bounded by design, intentionally so.
type VirtualSpace struct {
	mu   sync.Mutex
	cond *sync.Cond

	spp int // samples per packet, the release granularity

	endpoints map[string]*Endpoint
	fabric    map[[2]string]Channel // edge (txID,rxID) -> channel model
	noise     NoiseModel

	txWritten map[string]int // samples written this round, per TX endpoint
	rxRead    map[string]int // samples read this round, per RX endpoint

	simTime64   int64
	speedFactor float64 // e.g. 1 = real time, 2 = 2x, negative = slower
	startWall   time.Time
	startSim    int64

	pending map[string][][]complex64 // tx id -> this round's IQ per antenna
}

// NewVirtualSpace builds an empty fabric with samples-per-packet spp and a
// global sim/real-time speed factor.
func NewVirtualSpace(spp int, speedFactor float64) *VirtualSpace {
	common.Assert(spp > 0, "simulation: spp must be positive")
	vs := &VirtualSpace{
		spp:         spp,
		endpoints:   make(map[string]*Endpoint),
		fabric:      make(map[[2]string]Channel),
		txWritten:   make(map[string]int),
		rxRead:      make(map[string]int),
		pending:     make(map[string][][]complex64),
		speedFactor: speedFactor,
	}
	vs.cond = sync.NewCond(&vs.mu)
	return vs
}

// RegisterTX / RegisterRX add a simulated radio's TX or RX endpoint.
func (vs *VirtualSpace) RegisterTX(id string, nofAntennas int) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.endpoints[id] = &Endpoint{ID: id, NofAntennas: nofAntennas}
	vs.txWritten[id] = 0
}

func (vs *VirtualSpace) RegisterRX(id string, nofAntennas int) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if _, ok := vs.endpoints[id]; !ok {
		vs.endpoints[id] = &Endpoint{ID: id, NofAntennas: nofAntennas}
	}
	vs.rxRead[id] = 0
}

// SetEdgeChannel assigns the channel model for the complete-graph edge
// from txID to rxID.
func (vs *VirtualSpace) SetEdgeChannel(txID, rxID string, ch Channel) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.fabric[[2]string{txID, rxID}] = ch
}

// SetIntraLeakage sets the self-interference channel for one device's own
// TX->RX leakage path.
func (vs *VirtualSpace) SetIntraLeakage(id string, ch NoiseChannel) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if ep, ok := vs.endpoints[id]; ok {
		ep.channel = ch
	}
}

// SetNoiseModel installs the global additive-noise model (relative SNR or
// absolute thermal).
func (vs *VirtualSpace) SetNoiseModel(nm NoiseModel) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.noise = nm
}

// WaitWritable blocks the TX side of id until it's safe to write the next
// spp-sample slice: effectively "my previous slice has been consumed by
// every RX". A 100ms timeout is retried internally so a shutdown context
// cancellation is observed promptly.
func (vs *VirtualSpace) WaitWritable(ctx context.Context, id string, iq [][]complex64) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	round := vs.simTime64
	vs.pending[id] = iq
	vs.txWritten[id] = len(iq[0])

	if vs.allTXWritten() {
		vs.cond.Broadcast()
	}

	for vs.simTime64 == round {
		if ctx.Err() != nil {
			return false
		}
		if !vs.waitWithTimeout() {
			continue
		}
	}
	return true
}

// WaitReadable blocks the RX side of id until every TX endpoint has
// written its spp slice, then returns the combined (channel-filtered,
// noised) samples for id. The last reader to consume releases every TX
// and advances simTime64 by spp.
func (vs *VirtualSpace) WaitReadable(ctx context.Context, id string) ([][]complex64, bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	for !vs.allTXWritten() {
		if ctx.Err() != nil {
			return nil, false
		}
		if !vs.waitWithTimeout() {
			continue
		}
	}

	out := vs.composeRx(id)

	vs.rxRead[id] = vs.spp
	if vs.allRXRead() {
		vs.advanceRound()
		vs.cond.Broadcast()
	}
	return out, true
}

func (vs *VirtualSpace) allTXWritten() bool {
	for _, n := range vs.txWritten {
		if n < vs.spp {
			return false
		}
	}
	return true
}

func (vs *VirtualSpace) allRXRead() bool {
	for _, n := range vs.rxRead {
		if n < vs.spp {
			return false
		}
	}
	return true
}

// waitWithTimeout waits on the condvar for up to 100ms, returns whether
// it was notified (vs. timed out) — callers loop regardless to re-check
// their condition and ctx.
func (vs *VirtualSpace) waitWithTimeout() bool {
	fired := false
	t := time.AfterFunc(100*time.Millisecond, func() {
		vs.mu.Lock()
		fired = true
		vs.cond.Broadcast()
		vs.mu.Unlock()
	})
	vs.cond.Wait()
	t.Stop()
	return !fired
}

// composeRx sums, over every TX endpoint, that TX's IQ passed through the
// edge channel to rxID (or the intra-device leakage channel if txID ==
// rxID), then adds the global noise model.
func (vs *VirtualSpace) composeRx(rxID string) [][]complex64 {
	rxEp := vs.endpoints[rxID]
	out := make([][]complex64, rxEp.NofAntennas)
	for a := range out {
		out[a] = make([]complex64, vs.spp)
	}

	for txID, iq := range vs.pending {
		var filtered [][]complex64
		if txID == rxID {
			if rxEp.channel != nil {
				filtered = rxEp.channel.Apply(iq)
			}
		} else if ch, ok := vs.fabric[[2]string{txID, rxID}]; ok {
			filtered = ch.Apply(iq)
		}
		for a := range filtered {
			if a >= len(out) {
				break
			}
			for i, s := range filtered[a] {
				if i >= len(out[a]) {
					break
				}
				out[a][i] += s
			}
		}
	}

	if vs.noise != nil {
		vs.noise.AddNoise(out)
	}
	return out
}

// advanceRound resets the per-round write/read counters, advances the
// simulation clock by spp, and realigns real time to simulation time at
// the requested speed factor.
func (vs *VirtualSpace) advanceRound() {
	vs.pending = make(map[string][][]complex64)
	for id := range vs.txWritten {
		vs.txWritten[id] = 0
	}
	for id := range vs.rxRead {
		vs.rxRead[id] = 0
	}
	vs.simTime64 += int64(vs.spp)

	if vs.speedFactor == 0 {
		return
	}
	if vs.startWall.IsZero() {
		vs.startWall = time.Now()
		vs.startSim = vs.simTime64
		return
	}
	elapsedSimSamples := vs.simTime64 - vs.startSim
	wantedWall := time.Duration(float64(elapsedSimSamples) / vs.speedFactor * float64(time.Second))
	actualWall := time.Since(vs.startWall)
	if wantedWall > actualWall {
		time.Sleep(wantedWall - actualWall)
	}
}

// SimTime64 returns the current simulation sample clock.
func (vs *VirtualSpace) SimTime64() int64 {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.simTime64
}
