package harq

import (
	"sync"
	"sync/atomic"

	"github.com/dectnrp/dectnrp-go/internal/common"
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// procState replaces a two-level lock with a state enum {Free, Reserved,
// Running} guarded by a single mutex-like token, while keeping the
// two-level *meaning*: outer lock = this process is mine across multiple
// PHY passes; inner lock = PHY is working on it right now.
type procState int32

const (
	stateFree procState = iota
	stateReserved
	stateRunning
)

// maxRvUnwrapped is the compile-time cap on the TX unwrapped-retransmission
// count; exceeding it is asserted as a programmer/configuration error.
const maxRvUnwrapped = 64

// ProcessTX is the TX variant of a HARQ process.
type ProcessTX struct {
	ID int // immutable

	state atomic.Int32 // procState, CAS-guarded acquisition
	inner sync.Mutex   // held for the duration of one PHY encode pass

	PlcfType    fec.PlcfType
	NetworkID   uint32
	Sizes       part3.PacketSizes
	Rv          int
	RvUnwrapped int
	FinalizeTx  FinalizeTx

	Pdc         *fec.PdcState
	PlcfPayload []byte
}

// tryReserve CASes Free->Reserved; returns false if the process was not
// free.
func (p *ProcessTX) tryReserve() bool {
	return p.state.CompareAndSwap(int32(stateFree), int32(stateReserved))
}

// lockInner is the "inner lock acquired" half of a pass: PHY is now
// actively working the process.
func (p *ProcessTX) lockInner() {
	p.inner.Lock()
	p.state.Store(int32(stateRunning))
}

// unlockInner returns the process to Reserved (kept running for the MAC)
// without releasing the reservation.
func (p *ProcessTX) unlockInner() {
	p.state.Store(int32(stateReserved))
	p.inner.Unlock()
}

// Finalize applies one of the three TX outcomes.
func (p *ProcessTX) Finalize(f FinalizeTx) {
	switch f {
	case KeepRvAndKeepRunning:
		p.unlockInner()
	case IncreaseRvAndKeepRunning:
		p.Rv = NextRv(p.Rv)
		p.RvUnwrapped++
		common.Assert(p.RvUnwrapped <= maxRvUnwrapped, "harq: tx process %d exceeded max unwrapped retransmissions", p.ID)
		p.unlockInner()
	case ResetAndTerminate:
		p.reset()
		p.inner.Unlock()
		p.state.Store(int32(stateFree))
	}
}

func (p *ProcessTX) reset() {
	p.PlcfType = 0
	p.NetworkID = 0
	p.Sizes = part3.PacketSizes{}
	p.Rv = 0
	p.RvUnwrapped = 0
	p.Pdc = nil
	p.PlcfPayload = nil
}

// ProcessRX is the RX variant of a HARQ process.
type ProcessRX struct {
	ID int

	state atomic.Int32
	inner sync.Mutex

	PlcfType  fec.PlcfType
	NetworkID uint32
	Sizes     part3.PacketSizes
	Rv        int
	FinalizeRx FinalizeRx

	Pdc *fec.PdcState
}

func (p *ProcessRX) tryReserve() bool {
	return p.state.CompareAndSwap(int32(stateFree), int32(stateReserved))
}

func (p *ProcessRX) lockInner() {
	p.inner.Lock()
	p.state.Store(int32(stateRunning))
}

func (p *ProcessRX) unlockInner() {
	p.state.Store(int32(stateReserved))
	p.inner.Unlock()
}

// Finalize applies the RX policy: always-reset, never-reset, or
// conditional on CRC success.
func (p *ProcessRX) Finalize(f FinalizeRx, crcOK bool) {
	doReset := f == RxAlwaysReset || (f == RxResetOnCRCSuccess && crcOK)
	if doReset {
		p.reset()
		p.inner.Unlock()
		p.state.Store(int32(stateFree))
		return
	}
	p.unlockInner()
}

func (p *ProcessRX) reset() {
	p.PlcfType = 0
	p.NetworkID = 0
	p.Sizes = part3.PacketSizes{}
	p.Rv = 0
	p.Pdc = nil
}
