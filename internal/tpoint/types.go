// Package tpoint implements the L2 lower-MAC/PHY interface: the per-device
// MAC entry point receiving PHY callbacks and returning descriptors that
// tell the PHY which HARQ process to use and what to transmit next.
package tpoint

import (
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/phy/harq"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// TxMeta is the per-descriptor TX waveform metadata.
type TxMeta struct {
	DACScale          float64
	OptimalAmplitude  bool
	InitialPhase      float64
	PhaseIncrement    float64 // per-sample, post-resampling CFO emulation
	GIPercentage      int     // [4,100]
}

// BufferTxMeta is the scheduling metadata attached to a TxDescriptor.
type BufferTxMeta struct {
	TxOrderID uint64
	TxTime64  int64
	BusyWait  bool
}

// TxDescriptor bundles the HARQ process, codebook index, and TX/buffer
// metadata needed to schedule one transmission.
type TxDescriptor struct {
	HarqProcessTX *harq.ProcessTX
	CodebookIndex int
	TxMeta        TxMeta
	BufferTxMeta  BufferTxMeta
}

// IrregularReport asks the PHY to wake tpoint at a later sample time,
// even if nothing else happens.
type IrregularReport struct {
	CallAsapAfter64 int64
}

// MaclowPhy tells the PHY which RX HARQ process to use for decoding the
// PDC that follows a matched PCC.
type MaclowPhy struct {
	HarqProcessRX *harq.ProcessRX
	Handle        int
}

// MachighPhy is tpoint's reply carrying zero or more TX descriptors plus
// an optional wake-up request.
type MachighPhy struct {
	TxDescriptors   []TxDescriptor
	IrregularReport *IrregularReport
}

// PccMatch describes a decoded PLCF that matches one of this tpoint's
// configured network IDs. WorkPcc does not build one; it returns a
// MaclowPhy.
type PccMatch struct {
	PlcfType    fec.PlcfType
	NetworkID   uint32
	Sizes       part3.PacketSizes
	ClosedLoop  bool
	Beamforming bool
}
