package part3

import "testing"

func TestPccSequenceLengthAndDeterminism(t *testing.T) {
	seq1 := PccSequence()
	seq2 := PccSequence()
	if len(seq1) != PccScramblingLength {
		t.Fatalf("PccSequence length = %d, want %d", len(seq1), PccScramblingLength)
	}
	for i := range seq1 {
		if seq1[i] != seq2[i] {
			t.Fatalf("PccSequence is not stable across calls at bit %d", i)
		}
		if seq1[i] != 0 && seq1[i] != 1 {
			t.Fatalf("PccSequence bit %d = %d, want 0 or 1", i, seq1[i])
		}
	}
}

func TestScramblingPdcCachesPerNetworkAndType(t *testing.T) {
	s := NewScramblingPdc(512)

	a1 := s.Get(7, 1)
	a1Again := s.Get(7, 1)
	for i := range a1 {
		if a1[i] != a1Again[i] {
			t.Fatalf("cached sequence for (7,1) changed between calls at bit %d", i)
		}
	}

	b := s.Get(7, 2)
	different := false
	for i := range a1 {
		if a1[i] != b[i] {
			different = true
			break
		}
	}
	if !different {
		t.Fatalf("sequences for plcf type 1 and 2 under the same network id should differ")
	}

	if len(a1) != 512 {
		t.Fatalf("Get returned length %d, want gMax=512", len(a1))
	}
}

func TestScrambleAtIsInvolution(t *testing.T) {
	seq := PccSequence()
	bits := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	orig := append([]byte(nil), bits...)

	ScrambleAt(seq, 10, bits)
	if equalBytes(bits, orig) {
		t.Fatalf("ScrambleAt did not change bits")
	}
	ScrambleAt(seq, 10, bits)
	if !equalBytes(bits, orig) {
		t.Fatalf("ScrambleAt twice at the same offset should recover the original bits")
	}
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
