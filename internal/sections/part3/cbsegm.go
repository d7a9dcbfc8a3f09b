package part3

// Turbo-interleaver block sizes the codeblock segmenter may choose from.
// Real LTE (and DECT-2020 NR+, which reuses the LTE turbo code) restricts
// codeblock length K to a fixed table of 188 values from 40 to 6144 so the
// turbo internal interleaver has a closed-form parameterization. This
// generates the same *structure* the standard table has (step 8 up to
// 512, step 16 to 1024, step 32 to 2048, step 64 to 6144), documented in
// DESIGN.md as a simplification — callers needing bit-exact interop with
// another DECT-2020 NR+ implementation must replace this table, but the
// segmentation *algorithm* below (3GPP TS 36.212 §5.1.2) is implemented
// faithfully against whatever table is supplied.
var cbsegmTable = buildCbsegmTable()

func buildCbsegmTable() []int {
	var t []int
	for k := 40; k <= 512; k += 8 {
		t = append(t, k)
	}
	for k := 512 + 16; k <= 1024; k += 16 {
		t = append(t, k)
	}
	for k := 1024 + 32; k <= 2048; k += 32 {
		t = append(t, k)
	}
	for k := 2048 + 64; k <= 6144; k += 64 {
		t = append(t, k)
	}
	return t
}

// smallestKAtLeast returns the smallest table entry >= n, and false if n
// exceeds the table's maximum (meaning the requested codeblock size is too
// large for any supported Z).
func smallestKAtLeast(n int, maxK int) (int, bool) {
	for _, k := range cbsegmTable {
		if k > maxK {
			break
		}
		if k >= n {
			return k, true
		}
	}
	return 0, false
}

// CBSegmentation is the result of 3GPP TS 36.212 §5.1.2 codeblock
// segmentation: C codeblocks, C1 of length K1 and C2 of length K2 (C2 may
// be zero), and F filler bits. F == 0 is required for every accepted
// packet — filler bits are unsupported and the packet is rejected
// upstream if they would arise.
type CBSegmentation struct {
	C     int
	C1    int
	K1    int
	C2    int
	K2    int
	F     int
	BPlus int // B after the extra per-codeblock CRC bits are accounted for
}

// crcBitsPerExtraCB is the codeblock CRC width (LTE_CRC24B) added to every
// codeblock when C > 1.
const crcBitsPerExtraCB = 24

// Segmentate derives the codeblock segmentation of a B-bit transport block
// (B already includes the transport-block CRC) for the given max codeblock
// size Z ∈ {2048, 6144}.
func Segmentate(b int, z int) (CBSegmentation, bool) {
	if b <= 0 {
		return CBSegmentation{}, false
	}
	if b <= z {
		k, ok := smallestKAtLeast(b, z)
		if !ok {
			return CBSegmentation{}, false
		}
		return CBSegmentation{C: 1, C1: 1, K1: k, C2: 0, K2: 0, F: k - b, BPlus: b}, true
	}

	c := (b + crcBitsPerExtraCB - 1) / (z - crcBitsPerExtraCB)
	for c*(z-crcBitsPerExtraCB) < b {
		c++
	}
	bPlus := b + c*crcBitsPerExtraCB

	kPlus, ok := smallestKAtLeast((bPlus+c-1)/c, z)
	if !ok {
		return CBSegmentation{}, false
	}
	// Find the largest table entry strictly below kPlus to serve as K-.
	kMinus := 0
	for _, k := range cbsegmTable {
		if k >= kPlus {
			break
		}
		kMinus = k
	}
	if kMinus == 0 {
		// Single size suffices; all codeblocks use kPlus.
		f := kPlus*c - bPlus
		return CBSegmentation{C: c, C1: c, K1: kPlus, C2: 0, K2: 0, F: f, BPlus: bPlus}, true
	}

	delta := kPlus*c - bPlus
	cMinus := delta / (kPlus - kMinus)
	if cMinus > c {
		cMinus = c
	}
	cPlus := c - cMinus
	f := cPlus*kPlus + cMinus*kMinus - bPlus

	return CBSegmentation{
		C: c, C1: cPlus, K1: kPlus, C2: cMinus, K2: kMinus, F: f, BPlus: bPlus,
	}, true
}
