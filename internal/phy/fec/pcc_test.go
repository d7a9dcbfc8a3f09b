package fec

import (
	"bytes"
	"testing"
)

// testPlcfPayload returns a deterministic, non-trivial bit pattern (one bit
// per byte, MSB-first) of the requested length.
func testPlcfPayload(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte((i*7 + 3) % 2)
	}
	return out
}

// TestPccEncodeDecodeRoundTrip exercises EncodePlcf/DecodePlcfTest over a
// noiseless channel for both PLCF types across all four (closedLoop,
// beamforming) CRC-mask combinations, checking that the blind decoder both
// recovers the payload and reports back the same mask that was used to
// encode it.
func TestPccEncodeDecodeRoundTrip(t *testing.T) {
	var enc PccEnc

	combos := []struct {
		closedLoop, beamforming bool
	}{
		{false, false},
		{true, false},
		{false, true},
		{true, true},
	}

	for _, plcfType := range []PlcfType{PlcfType1, PlcfType2} {
		for _, c := range combos {
			payload := testPlcfPayload(plcfType.Bits())
			coded := enc.EncodePlcf(plcfType, c.closedLoop, c.beamforming, payload)
			if len(coded) != pccCodedLen {
				t.Fatalf("type=%d closedLoop=%v beamforming=%v: EncodePlcf produced %d bits, want %d",
					plcfType, c.closedLoop, c.beamforming, len(coded), pccCodedLen)
			}

			soft := make([]float64, len(coded))
			for i, b := range coded {
				if b == 1 {
					soft[i] = 8.0
				} else {
					soft[i] = -8.0
				}
			}

			got, ok := enc.DecodePlcfTest(plcfType, soft)
			if !ok {
				t.Fatalf("type=%d closedLoop=%v beamforming=%v: DecodePlcfTest failed on a noiseless round trip",
					plcfType, c.closedLoop, c.beamforming)
			}
			if got.ClosedLoop != c.closedLoop || got.Beamforming != c.beamforming {
				t.Fatalf("type=%d: decoded mask (closedLoop=%v, beamforming=%v), want (%v, %v)",
					plcfType, got.ClosedLoop, got.Beamforming, c.closedLoop, c.beamforming)
			}
			if !bytes.Equal(got.Payload, bitsToBytes(payload)) {
				t.Fatalf("type=%d closedLoop=%v beamforming=%v: decoded payload = %x, want %x",
					plcfType, c.closedLoop, c.beamforming, got.Payload, bitsToBytes(payload))
			}
		}
	}
}
