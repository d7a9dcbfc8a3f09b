package fec

import (
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// PlcfType is the PLCF size variant: type 1 carries 40 payload bits pre-CRC,
// type 2 carries 80.
type PlcfType int

const (
	PlcfType1 PlcfType = 1
	PlcfType2 PlcfType = 2
)

func (t PlcfType) Bits() int {
	if t == PlcfType1 {
		return 40
	}
	return 80
}

// pccCodedLen is the PCC's fixed coded length: 196 bits, 98 QPSK cells.
const pccCodedLen = 196

// plcfMask returns the 16-bit CRC mask selected by (closedLoop,
// beamforming).
func plcfMask(closedLoop, beamforming bool) uint16 {
	switch {
	case !closedLoop && !beamforming:
		return 0x0000
	case closedLoop && !beamforming:
		return 0x5555
	case !closedLoop && beamforming:
		return 0xAAAA
	default:
		return 0xFFFF
	}
}

// allMasks enumerates the four masks with their (closedLoop, beamforming)
// meaning, used by the blind decoder to test all four at once.
var allMasks = []struct {
	closedLoop, beamforming bool
	mask                    uint16
}{
	{false, false, 0x0000},
	{true, false, 0x5555},
	{false, true, 0xAAAA},
	{true, true, 0xFFFF},
}

// PccEnc is the PCC (PLCF transport) sub-engine of Fec. It holds no state:
// every DecodePlcfTest call builds its own soft buffers, so a blind decode
// attempt against the wrong type never pollutes the other type's attempt.
type PccEnc struct{}

// bitsToBytes packs MSB-first 0/1-per-byte bits into a byte slice.
func bitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

func bytesToBits(b []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = (b[i/8] >> uint(7-i%8)) & 1
	}
	return out
}

// EncodePlcf attaches a CRC16, XOR-masks it per (closedLoop, beamforming),
// turbo-encodes, rate-matches to 196 bits at rv=0 (PCC always uses rv=0),
// then scrambles with the fixed PCC sequence.
func (PccEnc) EncodePlcf(plcfType PlcfType, closedLoop, beamforming bool, payload []byte) []byte {
	n := plcfType.Bits()
	crc := part3.Compute(part3.CRC16, payload[:n], 0)
	crc ^= uint64(plcfMask(closedLoop, beamforming))

	a := make([]byte, 0, n+16)
	a = append(a, payload[:n]...)
	for i := 15; i >= 0; i-- {
		a = append(a, byte((crc>>uint(i))&1))
	}

	sys, par1, par2, tail1, tail2, _ := TurboEncode(a)
	mother := MotherCodeword(sys, par1, par2, tail1, tail2)
	coded := RateMatch(mother, 0, pccCodedLen)

	seq := part3.PccSequence()[:pccCodedLen]
	out := make([]byte, pccCodedLen)
	for i, b := range coded {
		out[i] = b ^ seq[i]
	}
	return out
}

// PlcfDecodeResult is returned by DecodePlcfTest.
type PlcfDecodeResult struct {
	Payload     []byte
	ClosedLoop  bool
	Beamforming bool
	Iterations  int
}

const maxPccIterations = 5

// DecodePlcfTest blindly decodes PCC for one PLCF type at a time — the
// caller must always test both types — descrambling, rate-dematching and
// iteratively turbo-decoding up to 5 iterations, testing the four CRC
// masks after every iteration and stopping early on the first match.
func (PccEnc) DecodePlcfTest(plcfType PlcfType, coded []float64) (PlcfDecodeResult, bool) {
	n := plcfType.Bits()
	crcWidth := 16
	aLen := n + crcWidth

	seq := part3.PccSequence()[:pccCodedLen]
	descrambled := make([]float64, pccCodedLen)
	for i, v := range coded {
		if seq[i] == 1 {
			descrambled[i] = -v
		} else {
			descrambled[i] = v
		}
	}

	il := NewInterleaver(aLen)
	bufLen := 3*aLen + 4
	motherLLR := RateDematch(descrambled, bufLen, 0)

	sysLLR := motherLLR[:aLen]
	tail1LLR := motherLLR[aLen : aLen+2]
	par1LLR := motherLLR[aLen+2 : aLen+2+aLen]
	par2LLR := motherLLR[aLen+2+aLen : aLen+2+aLen+aLen]
	_ = tail1LLR

	var matched PlcfDecodeResult
	var ok bool
	crcOK := func(bits []byte) bool {
		payload := bits[:n]
		recv := part3.BitsToUint(bits[n : n+crcWidth])
		recomputed := part3.Compute(part3.CRC16, payload, 0)
		for _, m := range allMasks {
			if recv^uint64(m.mask) == recomputed {
				matched = PlcfDecodeResult{
					Payload:     bitsToBytes(payload),
					ClosedLoop:  m.closedLoop,
					Beamforming: m.beamforming,
				}
				ok = true
				return true
			}
		}
		return false
	}

	_, iterations, found := TurboDecode(sysLLR, par1LLR, par2LLR, maxPccIterations, 1, crcOK)
	_ = il
	if !found || !ok {
		return PlcfDecodeResult{}, false
	}
	matched.Iterations = iterations
	return matched, true
}
