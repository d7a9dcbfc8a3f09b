package fec

import "github.com/dectnrp/dectnrp-go/internal/sections/part3"

// Fec is the top-level FEC state machine: a PCC sub-engine and a PDC
// sub-engine sharing one ScramblingPdc cache.
type Fec struct {
	Pcc        PccEnc
	Scrambling *part3.ScramblingPdc
}

// NewFec builds a Fec with a ScramblingPdc sized for gMax PDC bits — the
// maximum G across the radio device class (see
// part3.GetMaximumPacketSizes).
func NewFec(gMax int) *Fec {
	return &Fec{Scrambling: part3.NewScramblingPdc(gMax)}
}

// NewPdcState is a thin forward to NewPdcState bound to this Fec's shared
// scrambling cache, so HARQ processes never construct a ScramblingPdc of
// their own.
func (f *Fec) NewPdcState(cfg FecCfg) (*PdcState, bool) {
	return NewPdcState(cfg, f.Scrambling)
}
