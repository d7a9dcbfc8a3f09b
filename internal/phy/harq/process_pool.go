package harq

import (
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// ProcessPool holds bounded slices of TX and RX processes. Acquisition
// never blocks: a linear scan attempts to reserve the first free process;
// if none is free the call returns nil and the caller logs and drops the
// packet, preserving the PHY thread's real-time behaviour.
type ProcessPool struct {
	tx []*ProcessTX
	rx []*ProcessRX
}

// NewProcessPool preallocates nTx TX processes and nRx RX processes.
func NewProcessPool(nTx, nRx int) *ProcessPool {
	p := &ProcessPool{
		tx: make([]*ProcessTX, nTx),
		rx: make([]*ProcessRX, nRx),
	}
	for i := range p.tx {
		p.tx[i] = &ProcessTX{ID: i}
	}
	for i := range p.rx {
		p.rx[i] = &ProcessRX{ID: i}
	}
	return p
}

// GetProcessTX performs a fresh acquisition: linear scan for the first
// free TX process, reserve it, fill its parameters, lock it for the
// caller's immediate encode pass, and return it.
func (p *ProcessPool) GetProcessTX(plcfType fec.PlcfType, networkID uint32, sizes part3.PacketSizes, finalizeTx FinalizeTx) *ProcessTX {
	for _, proc := range p.tx {
		if !proc.tryReserve() {
			continue
		}
		proc.PlcfType = plcfType
		proc.NetworkID = networkID
		proc.Sizes = sizes
		proc.Rv = 0
		proc.RvUnwrapped = 0
		proc.FinalizeTx = finalizeTx
		proc.lockInner()
		return proc
	}
	return nil
}

// GetProcessTXRunning re-enters a process the caller already holds
// reserved from an earlier GetProcessTX call, for another encode pass at
// the current rv — the same process the caller still holds outer-locked,
// re-entered by inner-locking.
func (p *ProcessPool) GetProcessTXRunning(id int, finalizeTx FinalizeTx) *ProcessTX {
	if id < 0 || id >= len(p.tx) {
		return nil
	}
	proc := p.tx[id]
	proc.FinalizeTx = finalizeTx
	proc.lockInner()
	return proc
}

// GetProcessRX performs a fresh acquisition of an RX process, matched by
// the tpoint after a successful PCC decode.
func (p *ProcessPool) GetProcessRX(plcfType fec.PlcfType, networkID uint32, sizes part3.PacketSizes, rv int, finalizeRx FinalizeRx) *ProcessRX {
	for _, proc := range p.rx {
		if !proc.tryReserve() {
			continue
		}
		proc.PlcfType = plcfType
		proc.NetworkID = networkID
		proc.Sizes = sizes
		proc.Rv = rv
		proc.FinalizeRx = finalizeRx
		proc.lockInner()
		return proc
	}
	return nil
}

// GetProcessRXRunning re-enters the RX process at `id` for another decode
// pass (additional samples/codeblocks of the same PDC arriving).
func (p *ProcessPool) GetProcessRXRunning(id int, rv int, finalizeRx FinalizeRx) *ProcessRX {
	if id < 0 || id >= len(p.rx) {
		return nil
	}
	proc := p.rx[id]
	proc.Rv = rv
	proc.FinalizeRx = finalizeRx
	proc.lockInner()
	return proc
}

// NTX/NRX report the pool sizes, used by tests checking that a pool
// exhausts after its declared number of successful acquisitions.
func (p *ProcessPool) NTX() int { return len(p.tx) }
func (p *ProcessPool) NRX() int { return len(p.rx) }
