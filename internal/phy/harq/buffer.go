package harq

import "github.com/dectnrp/dectnrp-go/internal/sections/part3"

// BufferDims sizes the embedded turbo softbuffer every HarqBufferTx/Rx
// needs, dimensioned by max-C, N_TB_byte, G, Z. Computed once from the
// device class's maximum PacketSizes and used to preallocate every
// process's buffers up front, rather than allocating per packet on the hot
// path.
type BufferDims struct {
	MaxC      int
	MaxTBByte int
	MaxG      int
	MaxZ      int
}

// DimsFromMaximum derives BufferDims from the device class's largest
// supported packet geometry.
func DimsFromMaximum(max part3.PacketSizes) BufferDims {
	return BufferDims{
		MaxC:      max.C,
		MaxTBByte: max.NTBByte,
		MaxG:      max.G,
		MaxZ:      max.Def.Z,
	}
}

// RxPlcfAttempt tracks one blind-decode slot: HarqBufferRxPlcf holds one
// slot per PLCF type, each only an attempt counter, not a softbuffer.
// Since fec.PccEnc.DecodePlcfTest takes its channel LLRs fresh on every
// call and never mutates shared state across calls, "resetting" a slot
// here just means incrementing its attempt counter for observability/
// logging — no soft values leak between the type-1 and type-2 attempts by
// construction.
type RxPlcfAttempt struct {
	Attempts int
}

// HarqBufferRxPlcf is the pair of independent blind-decode slots.
type HarqBufferRxPlcf struct {
	Type1 RxPlcfAttempt
	Type2 RxPlcfAttempt
}

func (b *HarqBufferRxPlcf) Reset(plcfType int) {
	if plcfType == 1 {
		b.Type1.Attempts++
	} else {
		b.Type2.Attempts++
	}
}
