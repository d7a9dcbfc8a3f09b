package fec

import (
	"bytes"
	"testing"

	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// TestPdcStateRoundTripSingleCodeblock exercises the PDC encode/decode
// path end to end over a noiseless channel: a single-codeblock transport
// block (8 bytes, which segments to K=88 with zero filler bits) is
// encoded at rv=0 with G equal to the full rate-1/3 mother codeword
// length, so RateMatch/RateDematch are exact inverses and the turbo
// decoder sees the unmodified channel LLRs.
func TestPdcStateRoundTripSingleCodeblock(t *testing.T) {
	const ntbBits = 64 // 8 bytes
	const z = 2048
	const networkID = 42

	scr := part3.NewScramblingPdc(512)
	cfg := FecCfg{
		PlcfType:  PlcfType1,
		NTBBits:   ntbBits,
		NBps:      2,
		Rv:        0,
		G:         268, // 3*K + 4 tail bits, K=88
		NetworkID: networkID,
		Z:         z,
	}

	txState, ok := NewPdcState(cfg, scr)
	if !ok {
		t.Fatalf("NewPdcState rejected a geometry expected to segment with zero filler bits")
	}

	payload := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	coded := txState.EncodeNext(payload, cfg.G)
	if len(coded) != cfg.G {
		t.Fatalf("EncodeNext produced %d bits, want G=%d", len(coded), cfg.G)
	}

	soft := make([]float64, len(coded))
	for i, b := range coded {
		if b == 1 {
			soft[i] = 8.0
		} else {
			soft[i] = -8.0
		}
	}

	rxState, ok := NewPdcState(cfg, scr)
	if !ok {
		t.Fatalf("NewPdcState (rx) rejected the same geometry as tx")
	}
	rxState.DecodeNext(soft)
	if !rxState.Done() {
		t.Fatalf("expected decode to consume all codeblocks in one DecodeNext call")
	}

	crcOK, gotPayload := rxState.Finalize()
	if !crcOK {
		t.Fatalf("CRC failed on a noiseless round trip")
	}
	if !bytes.Equal(gotPayload, payload) {
		t.Fatalf("decoded payload = %x, want %x", gotPayload, payload)
	}
}

func TestPdcStateRejectsGeometryRequiringFiller(t *testing.T) {
	scr := part3.NewScramblingPdc(64)
	cfg := FecCfg{PlcfType: PlcfType1, NTBBits: 1, NBps: 1, Rv: 0, G: 10, NetworkID: 1, Z: 2048}
	if _, ok := NewPdcState(cfg, scr); ok {
		t.Fatalf("expected rejection: a 1-bit transport block plus CRC24A cannot segment to F=0 for every Z")
	}
}

func TestDistributeNESumsToG(t *testing.T) {
	ks := []int{40, 88, 152}
	g := 500
	ne := distributeNE(g, ks)
	sum := 0
	for _, n := range ne {
		sum += n
	}
	if sum != g {
		t.Fatalf("distributeNE sums to %d, want %d", sum, g)
	}
}
