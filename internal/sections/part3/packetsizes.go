package part3

// PacketSizeDef is the six-field (plus Z) packet geometry input: u, b,
// PacketLengthType, PacketLength, tm_mode_index, mcs_index, Z.
type PacketSizeDef struct {
	U                int
	B                int
	PacketLengthType int // 1: PacketLength counts subslots; 2: counts slots
	PacketLength     int // 1..16
	TMModeIndex      int
	MCSIndex         int
	Z                int // 2048 or 6144
}

// PacketSizes is the immutable, fully derived geometry for one
// PacketSizeDef. Every field is computed once by GetPacketSizes and never
// mutated afterwards.
type PacketSizes struct {
	Def PacketSizeDef

	NTXUsed int
	NSS     int

	NTBBits int
	NTBByte int
	C       int
	G       int

	NPacketSymb int
	NPDCSubc    int

	NSamplesSTF    int
	NSamplesDF     int
	NSamplesGI     int
	NSamplesPacket int

	Seg CBSegmentation
}

// symbolsPerSlot is fixed at 16 so every supported u ∈ {1,2,4,8} divides it
// evenly into whole subslots (documented simplification, see DESIGN.md).
const symbolsPerSlot = 16

// nStfSymb is the number of OFDM symbols occupied by the short training
// field, fixed regardless of numerology.
const nStfSymb = 1

// pccCells is the number of QPSK cells PCC always occupies: 196 coded bits
// at 2 bits/cell = 98 cells.
const pccCells = 98

// defaultGIPercent is the nominal guard-interval percentage used to size
// N_samples_GI when deriving PacketSizes; the real per-transmission
// GI_percentage (TxDescriptor.tx_meta, range [4,100]) is a TX-time choice
// and may differ, but buffer preallocation needs one fixed nominal value
// and 4 (the minimum) gives the smallest safe guard.
const defaultGIPercent = 4

// nSubcByB is the active-subcarrier count for a given b (documented
// simplification: the real standard assigns b a non-uniform subcarrier
// count per FFT size; here it is a simple multiple of a 112-subcarrier
// unit, preserving b's role as a bandwidth-scaling factor).
var nSubcByB = map[int]int{1: 112, 2: 224, 4: 448, 8: 896, 12: 1344, 16: 1792}

func nSamplesPerSymb(b int) int {
	n := nSubcByB[b]
	cp := n / 8
	return n + cp
}

// GetPacketSizes derives PacketSizes from psdef, returning (sizes, true) on
// a valid geometry or (zero value, false) for an "undefined" one — invalid
// geometries are expected, non-exceptional outcomes.
// deviceNTX is the antenna count actually configured on the radio device;
// a tm_mode requiring more antennas than the device has is undefined.
func GetPacketSizes(def PacketSizeDef, deviceNTX int) (PacketSizes, bool) {
	if def.PacketLengthType != 1 && def.PacketLengthType != 2 {
		return PacketSizes{}, false
	}
	if def.PacketLength < 1 || def.PacketLength > 16 {
		return PacketSizes{}, false
	}
	nSubc, ok := nSubcByB[def.B]
	if !ok {
		return PacketSizes{}, false
	}
	if def.Z != 2048 && def.Z != 6144 {
		return PacketSizes{}, false
	}
	tm, ok := LookupTMMode(def.TMModeIndex)
	if !ok {
		return PacketSizes{}, false
	}
	if tm.NTX > deviceNTX {
		return PacketSizes{}, false
	}
	nBps := NBps(def.MCSIndex)
	if nBps == 0 {
		return PacketSizes{}, false
	}
	rateNum, rateDen, ok := CodeRate(def.MCSIndex)
	if !ok {
		return PacketSizes{}, false
	}

	if def.U != 1 && def.U != 2 && def.U != 4 && def.U != 8 {
		return PacketSizes{}, false
	}
	if symbolsPerSlot%def.U != 0 {
		return PacketSizes{}, false
	}
	var nPacketSymb int
	if def.PacketLengthType == 1 {
		nPacketSymb = def.PacketLength * (symbolsPerSlot / def.U)
	} else {
		nPacketSymb = def.PacketLength * symbolsPerSlot
	}
	if nPacketSymb <= nStfSymb {
		return PacketSizes{}, false
	}

	totalDataCells := (nPacketSymb - nStfSymb) * nSubc
	drsCells := totalDataCells / tm.DRSRatio
	pdcSubc := (totalDataCells - drsCells - pccCells) * tm.NSS
	if pdcSubc <= 0 {
		return PacketSizes{}, false
	}

	g := pdcSubc * nBps
	if g <= 0 {
		return PacketSizes{}, false
	}

	nTBBits := (g * rateNum) / rateDen
	nTBBits -= nTBBits % 8
	if nTBBits <= 0 {
		return PacketSizes{}, false
	}

	seg, ok := Segmentate(nTBBits+CRC24A.Width(), def.Z)
	if !ok || seg.F != 0 {
		return PacketSizes{}, false
	}

	samplesPerSymb := nSamplesPerSymb(def.B)
	nSamplesSTF := nStfSymb * samplesPerSymb
	nSamplesDF := (nPacketSymb - nStfSymb) * samplesPerSymb
	nSamplesGI := (samplesPerSymb*defaultGIPercent + 99) / 100

	return PacketSizes{
		Def:            def,
		NTXUsed:        tm.NTX,
		NSS:            tm.NSS,
		NTBBits:        nTBBits,
		NTBByte:        nTBBits / 8,
		C:              seg.C,
		G:              g,
		NPacketSymb:    nPacketSymb,
		NPDCSubc:       pdcSubc,
		NSamplesSTF:    nSamplesSTF,
		NSamplesDF:     nSamplesDF,
		NSamplesGI:     nSamplesGI,
		NSamplesPacket: nSamplesSTF + nSamplesDF + nSamplesGI,
		Seg:            seg,
	}, true
}

// GetMaximumPacketSizes picks the single largest-sized configuration the
// named radio device class supports — the sizing used by every
// preallocation (HARQ buffers, resampler history, TX pool).
func GetMaximumPacketSizes(radioDeviceClass string) (PacketSizes, bool) {
	rdc, err := ParseRadioDeviceClass(radioDeviceClass)
	if err != nil {
		return PacketSizes{}, false
	}
	best := PacketSizes{}
	found := false
	for tmIdx := 0; tmIdx < len(tmModes); tmIdx++ {
		tm, _ := LookupTMMode(tmIdx)
		if tm.NTX > rdc.NTX {
			continue
		}
		for mcs := 0; mcs < 12; mcs++ {
			def := PacketSizeDef{
				U: rdc.U, B: rdc.B, PacketLengthType: 2, PacketLength: 16,
				TMModeIndex: tmIdx, MCSIndex: mcs, Z: rdc.Z,
			}
			ps, ok := GetPacketSizes(def, rdc.NTX)
			if !ok {
				continue
			}
			if !found || ps.NTBByte > best.NTBByte {
				best = ps
				found = true
			}
		}
	}
	return best, found
}
