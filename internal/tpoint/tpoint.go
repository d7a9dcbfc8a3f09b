package tpoint

import (
	"github.com/charmbracelet/log"

	"github.com/dectnrp/dectnrp-go/internal/phy/estimator"
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/phy/harq"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// Callbacks is the upper-layer hook surface Tpoint dispatches decoded PDUs
// and TX opportunities to. The loopback firmware under
// internal/tpoint/firmware implements this for demos/tests; a real
// application wires its own.
type Callbacks interface {
	// OnMacPdu is called with a successfully decoded PDC payload.
	OnMacPdu(networkID uint32, payload []byte)

	// NextTx is polled by work_regular/work_irregular to ask the firmware
	// whether it has anything to transmit right now.
	NextTx(now64 int64) *MachighPhy
}

// Tpoint is the per-device MAC entry point: it receives PHY callbacks and
// returns descriptors telling the PHY what to transmit next.
type Tpoint struct {
	NetworkIDs []uint32

	Pool *harq.ProcessPool
	Fec  *fec.Fec

	plcf *PlcfDecoder
	log  *log.Logger

	cb Callbacks

	rxPlcfBuf harq.HarqBufferRxPlcf
}

// New builds a Tpoint bound to one or more network IDs, a HARQ pool sized
// for this device, a Fec engine, and the firmware callback surface.
func New(networkIDs []uint32, pool *harq.ProcessPool, f *fec.Fec, logger *log.Logger, cb Callbacks) *Tpoint {
	return &Tpoint{
		NetworkIDs: networkIDs,
		Pool:       pool,
		Fec:        f,
		plcf:       NewPlcfDecoder(),
		log:        logger,
		cb:         cb,
	}
}

func (t *Tpoint) ownsNetwork(id uint32) bool {
	for _, n := range t.NetworkIDs {
		if n == id {
			return true
		}
	}
	return false
}

// WorkPcc is the PHY's first callback per received packet: decode the
// PCC blindly, check the decoded network id against this tpoint's
// configured IDs, and — if it matches — acquire an RX HARQ process and
// return the MaclowPhy describing how the PDC should be decoded.
func (t *Tpoint) WorkPcc(coded []float64, sync estimator.SyncReport, sizes part3.PacketSizes, rv int) (MaclowPhy, bool) {
	res, plcfType, ok := t.plcf.Try(coded, &t.rxPlcfBuf)
	if !ok {
		return MaclowPhy{}, false
	}

	networkID := part3.BitsToUint(bytesToBits(res.Payload, 32))
	if !t.ownsNetwork(uint32(networkID)) {
		if t.log != nil {
			t.log.Debug("pcc decoded but network id not ours",
				"network_id", networkID, "fine_peak_time_64", sync.FinePeakTime64, "cfo_hz", sync.CFOHz)
		}
		return MaclowPhy{}, false
	}

	proc := t.Pool.GetProcessRX(plcfType, uint32(networkID), sizes, rv, harq.RxResetOnCRCSuccess)
	if proc == nil {
		if t.log != nil {
			t.log.Warn("rx harq pool exhausted, dropping packet")
		}
		return MaclowPhy{}, false
	}

	return MaclowPhy{HarqProcessRX: proc, Handle: proc.ID}, true
}

// WorkPdcAsync is called once the PHY has assembled PDC soft bits for the
// process work_pcc handed back; it runs the turbo decode via the
// process's PdcState and delivers the payload to the firmware on
// success.
func (t *Tpoint) WorkPdcAsync(proc *harq.ProcessRX, soft []float64) {
	if proc.Pdc == nil {
		if t.log != nil {
			t.log.Warn("work_pdc_async called with no pdc state bound", "id", proc.ID)
		}
		proc.Finalize(proc.FinalizeRx, false)
		return
	}

	proc.Pdc.DecodeNext(soft)
	if !proc.Pdc.Done() {
		proc.Finalize(proc.FinalizeRx, false)
		return
	}

	crcOK, payload := proc.Pdc.Finalize()
	if crcOK && t.cb != nil {
		t.cb.OnMacPdu(proc.NetworkID, payload)
	}
	proc.Finalize(proc.FinalizeRx, crcOK)
}

// WorkRegular is the PHY's per-slot tick asking whether the firmware has
// anything to transmit.
func (t *Tpoint) WorkRegular(now64 int64) MachighPhy {
	if t.cb == nil {
		return MachighPhy{}
	}
	if reply := t.cb.NextTx(now64); reply != nil {
		return *reply
	}
	return MachighPhy{}
}

// WorkIrregular is the PHY's callback at the sample time a prior
// IrregularReport requested.
func (t *Tpoint) WorkIrregular(now64 int64) MachighPhy {
	return t.WorkRegular(now64)
}

// WorkChscanAsync is a stub hook for channel-scan results; the core spec
// treats higher-MAC messaging IEs (what a channel scan report contains)
// as out of scope, so this simply forwards to the firmware callback
// surface via OnMacPdu with networkID 0 as a sentinel "not a PDU" report
// channel — firmware implementations that care can type-switch the
// payload themselves.
func (t *Tpoint) WorkChscanAsync(report []byte) {
	if t.cb != nil {
		t.cb.OnMacPdu(0, report)
	}
}

// bytesToBits is the 32-bit-network-id-sized companion to fec's internal
// bitsToBytes/bytesToBits — duplicated here rather than exported from fec
// since it's a one-line adapter over a payload slice that is otherwise
// opaque to tpoint.
func bytesToBits(b []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n && i/8 < len(b); i++ {
		out[i] = (b[i/8] >> uint(7-i%8)) & 1
	}
	return out
}
