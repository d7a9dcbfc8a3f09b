package part3

import (
	"testing"

	"pgregory.net/rapid"
)

// TestSegmentateFillerBookkeeping exercises Segmentate directly across a
// spread of B values around the table boundaries and checks that F equals
// C1*K1+C2*K2-BPlus and that C1+C2 == C. F itself is non-zero for several
// of these B values (e.g. 513); rejecting F != 0 is GetPacketSizes' job.
func TestSegmentateFillerBookkeeping(t *testing.T) {
	for _, b := range []int{40, 512, 513, 1024, 2048, 2049, 6144, 6145, 12000} {
		seg, ok := Segmentate(b, 6144)
		if !ok {
			continue
		}
		total := seg.C1*seg.K1 + seg.C2*seg.K2
		if total-seg.BPlus != seg.F {
			t.Fatalf("b=%d: F=%d inconsistent with C1*K1+C2*K2-BPlus=%d", b, seg.F, total-seg.BPlus)
		}
		if seg.C1+seg.C2 != seg.C {
			t.Fatalf("b=%d: C1+C2=%d != C=%d", b, seg.C1+seg.C2, seg.C)
		}
	}
}

func TestSegmentateRejectsNonPositive(t *testing.T) {
	if _, ok := Segmentate(0, 2048); ok {
		t.Fatalf("Segmentate(0, ...) should fail")
	}
	if _, ok := Segmentate(-10, 2048); ok {
		t.Fatalf("Segmentate(negative, ...) should fail")
	}
}

// TestSegmentateCoversPayload is a property test (pgregory.net/rapid):
// whatever B the segmenter accepts, the resulting codeblocks' total
// capacity (after filler) never falls short of B.
func TestSegmentateCoversPayload(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		z := rapid.SampledFrom([]int{2048, 6144}).Draw(rt, "z")
		b := rapid.IntRange(1, z*4).Draw(rt, "b")

		seg, ok := Segmentate(b, z)
		if !ok {
			return
		}
		capacity := seg.C1*seg.K1 + seg.C2*seg.K2
		if capacity < seg.BPlus {
			rt.Fatalf("capacity %d < BPlus %d for b=%d z=%d", capacity, seg.BPlus, b, z)
		}
		if seg.K1 > z || (seg.C2 > 0 && seg.K2 > z) {
			rt.Fatalf("codeblock size exceeds Z=%d", z)
		}
	})
}
