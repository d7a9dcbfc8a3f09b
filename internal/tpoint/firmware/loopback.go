// Package firmware provides a minimal loopback tpoint.Callbacks
// implementation. It echoes every received MAC PDU back as a TX descriptor
// on the next regular tick, exercising the full Tpoint/Fec/HARQ path end to
// end without any external application wiring.
package firmware

import (
	"sync"

	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/phy/harq"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
	"github.com/dectnrp/dectnrp-go/internal/tpoint"
)

// Loopback queues received payloads and re-emits one per regular tick as
// a TxDescriptor against a freshly acquired TX HARQ process, encoded with
// the fixed geometry Sizes.
type Loopback struct {
	mu      sync.Mutex
	pending [][]byte

	pool      *harq.ProcessPool
	f         *fec.Fec
	sizes     part3.PacketSizes
	networkID uint32
}

// NewLoopback builds a Loopback bound to pool for acquiring TX processes,
// f for encoding, sizes for the fixed packet geometry this demo firmware
// always uses, and networkID for outgoing PLCFs.
func NewLoopback(pool *harq.ProcessPool, f *fec.Fec, sizes part3.PacketSizes, networkID uint32) *Loopback {
	return &Loopback{pool: pool, f: f, sizes: sizes, networkID: networkID}
}

func (l *Loopback) OnMacPdu(networkID uint32, payload []byte) {
	cp := make([]byte, len(payload))
	copy(cp, payload)
	l.mu.Lock()
	l.pending = append(l.pending, cp)
	l.mu.Unlock()
}

// NextTx pops one queued payload, acquires a TX HARQ process, starts its
// PdcState, and encodes the first codeblock pass — the rest of the rv
// cycle is driven by further PHY passes against the same process.
func (l *Loopback) NextTx(now64 int64) *tpoint.MachighPhy {
	l.mu.Lock()
	if len(l.pending) == 0 {
		l.mu.Unlock()
		return nil
	}
	payload := l.pending[0]
	l.pending = l.pending[1:]
	l.mu.Unlock()

	proc := l.pool.GetProcessTX(fec.PlcfType1, l.networkID, l.sizes, harq.KeepRvAndKeepRunning)
	if proc == nil {
		return nil
	}

	pdc, ok := l.f.NewPdcState(fec.FecCfg{
		PlcfType:  fec.PlcfType1,
		NTBBits:   l.sizes.NTBBits,
		NBps:      part3.NBps(l.sizes.Def.MCSIndex),
		Rv:        proc.Rv,
		G:         l.sizes.G,
		NetworkID: l.networkID,
		Z:         l.sizes.Def.Z,
	})
	if !ok {
		proc.Finalize(harq.ResetAndTerminate)
		return nil
	}
	proc.Pdc = pdc
	_ = pdc.EncodeNext(payload, l.sizes.G)

	return &tpoint.MachighPhy{
		TxDescriptors: []tpoint.TxDescriptor{{
			HarqProcessTX: proc,
			TxMeta:        tpoint.TxMeta{DACScale: 1.0, GIPercentage: 10},
			BufferTxMeta:  tpoint.BufferTxMeta{TxTime64: now64},
		}},
	}
}
