package tpoint

import (
	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/phy/harq"
)

// PlcfDecoder tests both PLCF types blindly against one PCC's channel
// LLRs; a PLCF is accepted on CRC match after XOR-unmasking the 16-bit
// mask selected by (closed_loop, beamforming). The mask search itself
// happens inside fec.PccEnc.DecodePlcfTest; this type is the "try type 1,
// then type 2" orchestration plus the HARQ blind-buffer bookkeeping.
type PlcfDecoder struct {
	enc fec.PccEnc
}

// NewPlcfDecoder constructs a decoder; fec.PccEnc is stateless so no
// shared buffer needs to be threaded in beyond the per-attempt
// HarqBufferRxPlcf the caller supplies.
func NewPlcfDecoder() *PlcfDecoder {
	return &PlcfDecoder{}
}

// Try attempts type 1 first, then type 2, against the same channel LLRs,
// incrementing the corresponding attempt counter in buf regardless of
// outcome. Resetting the softbuffer for the attempted type is crucial,
// since blind decoding otherwise corrupts state; here that's mirrored as
// independent attempt counters rather than shared decoder state, since
// fec.PccEnc.DecodePlcfTest takes its LLRs fresh every call.
func (d *PlcfDecoder) Try(coded []float64, buf *harq.HarqBufferRxPlcf) (fec.PlcfDecodeResult, fec.PlcfType, bool) {
	buf.Reset(1)
	if res, ok := d.enc.DecodePlcfTest(fec.PlcfType1, coded); ok {
		return res, fec.PlcfType1, true
	}

	buf.Reset(2)
	if res, ok := d.enc.DecodePlcfTest(fec.PlcfType2, coded); ok {
		return res, fec.PlcfType2, true
	}

	return fec.PlcfDecodeResult{}, 0, false
}
