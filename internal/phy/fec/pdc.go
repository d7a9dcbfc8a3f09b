package fec

import (
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

// FecCfg is consumed by every PDC call: PlcfType is filled by the receiver
// from the blind PCC decode; everything else comes from the matched HARQ
// process's PacketSizes.
type FecCfg struct {
	PlcfType   PlcfType
	ClosedLoop bool
	Beamforming bool
	NTBBits    int
	NBps       int
	Rv         int
	G          int
	NetworkID  uint32
	Z          int
}

const maxPdcIterations = 10
const minPdcIterations = 2

// cbState is the per-codeblock bookkeeping PdcState tracks across one or
// more encode/decode calls and across HARQ retransmissions of the same TB.
type cbState struct {
	k int // codeblock length K_r (includes its own CRC)

	// TX: the raw coded streams, kept so rv>0 retransmissions reuse them
	// instead of re-running the turbo encoder.
	mother []byte

	// RX: accumulated soft mother-codeword for HARQ chase/incremental
	// combining across rv attempts, and the decode outcome.
	motherLLR []float64
	decoded   bool
	bytes     []byte
}

// PdcState is the live encode or decode state for one PDC packet: codeblock
// segmentation and scrambling-sequence selection, plus the codeblock
// cursor and bit read/write pointers.
type PdcState struct {
	cfg FecCfg
	seg part3.CBSegmentation
	seq []byte

	cbs      []cbState
	cbCursor int
	wp, rp   int // bit offsets into the scrambling sequence
	nEPerCB  []int
}

// NewPdcState runs codeblock segmentation and picks the scrambling
// sequence for (network_id, plcf_type); returns false if filler bits
// would be required — the packet is rejected upstream in that case.
func NewPdcState(cfg FecCfg, scr *part3.ScramblingPdc) (*PdcState, bool) {
	seg, ok := part3.Segmentate(cfg.NTBBits+part3.CRC24A.Width(), cfg.Z)
	if !ok || seg.F != 0 {
		return nil, false
	}

	cbs := make([]cbState, seg.C)
	ks := make([]int, seg.C)
	for i := 0; i < seg.C; i++ {
		k := seg.K2
		if i < seg.C1 {
			k = seg.K1
		}
		ks[i] = k
		cbs[i] = cbState{k: k}
	}

	nE := distributeNE(cfg.G, ks)

	return &PdcState{
		cfg:     cfg,
		seg:     seg,
		seq:     scr.Get(cfg.NetworkID, int(cfg.PlcfType)),
		cbs:     cbs,
		nEPerCB: nE,
	}, true
}

// distributeNE splits a G-bit budget across codeblocks proportionally to
// each codeblock's K, with the remainder folded into the last codeblock so
// the sum is exactly G (the real standard does the equivalent allocation
// per TS 36.212 §5.1.4.1.2).
func distributeNE(g int, ks []int) []int {
	sumK := 0
	for _, k := range ks {
		sumK += k
	}
	out := make([]int, len(ks))
	assigned := 0
	for i, k := range ks {
		if i == len(ks)-1 {
			out[i] = g - assigned
			continue
		}
		n := (g * k) / sumK
		out[i] = n
		assigned += n
	}
	return out
}

// NofBitsRemaining reports how many PDC bits have yet to be produced (TX)
// or consumed (RX) across the remaining codeblocks — lets the caller
// decide whether another EncodeNext/DecodeNext call is needed.
func (s *PdcState) NofBitsRemaining() int {
	total := 0
	for i := s.cbCursor; i < len(s.cbs); i++ {
		total += s.nEPerCB[i]
	}
	return total
}

func (s *PdcState) Done() bool { return s.cbCursor >= len(s.cbs) }

// EncodeNext advances one whole codeblock at a time until at least
// nofBitsMinimum bits have been produced or all codeblocks are encoded,
// enabling incremental TX for large TBs.
func (s *PdcState) EncodeNext(payload []byte, nofBitsMinimum int) []byte {
	var out []byte
	for s.cbCursor < len(s.cbs) && len(out) < nofBitsMinimum {
		cb := &s.cbs[s.cbCursor]
		nE := s.nEPerCB[s.cbCursor]

		var mother []byte
		if s.cfg.Rv == 0 || cb.mother == nil {
			c := s.cbPayloadBits(payload, s.cbCursor)
			var withCRC []byte
			if len(s.cbs) == 1 {
				withCRC = part3.AppendCRC(part3.CRC24A, c)
			} else {
				withCRC = part3.AppendCRC(part3.CRC24B, c)
			}
			sys, par1, par2, tail1, tail2, _ := TurboEncode(withCRC)
			mother = MotherCodeword(sys, par1, par2, tail1, tail2)
			cb.mother = mother
		} else {
			mother = cb.mother
		}

		coded := RateMatch(mother, s.cfg.Rv, nE)
		part3.ScrambleAt(s.seq, s.wp, coded)
		s.wp += nE
		out = append(out, coded...)
		s.cbCursor++
	}
	return out
}

func bitsOfAll(payload []byte) []byte {
	return bytesToBits(payload, len(payload)*8)
}

// combinedBits is the (NTBBits+24)-bit stream part3.Segmentate was given at
// NewPdcState time: the real TB payload followed immediately by its
// TB-CRC24A. Every codeblock's payload slice is cut from this single
// stream, so the TB-CRC lands wherever segmentation put it (normally
// entirely inside the last codeblock) instead of being recomputed and
// appended a second time on top of an already-short slice.
func (s *PdcState) combinedBits(payload []byte) []byte {
	payloadBits := bitsOfAll(payload)
	tbCRC := part3.Compute(part3.CRC24A, payloadBits, 0)
	out := make([]byte, 0, len(payloadBits)+part3.CRC24A.Width())
	out = append(out, payloadBits...)
	for i := part3.CRC24A.Width() - 1; i >= 0; i-- {
		out = append(out, byte((tbCRC>>uint(i))&1))
	}
	return out
}

// cbPayloadBits slices out codeblock idx's payload bits (unpacked, one bit
// per byte) from combinedBits — the stream already includes the TB-CRC, so
// no codeblock needs special-casing for it.
func (s *PdcState) cbPayloadBits(payload []byte, idx int) []byte {
	// Codeblock payload length excludes its own CRC (24 bits CB-CRC24B, or
	// for the single-CB case the TB-CRC24A already folded into K).
	crcBits := 24
	if len(s.cbs) == 1 {
		crcBits = part3.CRC24A.Width()
	}
	k := s.cbs[idx].k - crcBits
	start := 0
	for i := 0; i < idx; i++ {
		ci := 24
		if len(s.cbs) == 1 {
			ci = part3.CRC24A.Width()
		}
		start += s.cbs[i].k - ci
	}
	bits := s.combinedBits(payload)
	end := start + k
	if end > len(bits) {
		end = len(bits)
	}
	if start > len(bits) {
		start = len(bits)
	}
	return bits[start:end]
}

// DecodeNext consumes softLLR (already demodulated channel LLRs for the
// next PDC bits) one whole codeblock at a time; a trailing part of softLLR
// shorter than the next codeblock is left unused. It returns nothing: Done
// reports whether every codeblock has been attempted, and Finalize reports
// the TB-CRC outcome.
func (s *PdcState) DecodeNext(softLLR []float64) {
	consumed := 0
	for s.cbCursor < len(s.cbs) && consumed < len(softLLR) {
		nE := s.nEPerCB[s.cbCursor]
		if consumed+nE > len(softLLR) {
			break
		}
		chunk := softLLR[consumed : consumed+nE]
		consumed += nE

		cb := &s.cbs[s.cbCursor]
		if cb.decoded {
			s.cbCursor++
			continue
		}

		descrambled := make([]float64, nE)
		for i, v := range chunk {
			if s.seq[(s.rp+i)%len(s.seq)] == 1 {
				descrambled[i] = -v
			} else {
				descrambled[i] = v
			}
		}
		s.rp += nE

		bufLen := 3*cb.k + 4
		if cb.motherLLR == nil {
			cb.motherLLR = make([]float64, bufLen)
		}
		add := RateDematch(descrambled, bufLen, s.cfg.Rv)
		for i := range cb.motherLLR {
			cb.motherLLR[i] += add[i]
		}

		crcKind := part3.CRC24B
		payloadLen := cb.k - 24
		if len(s.cbs) == 1 {
			crcKind = part3.CRC24A
			payloadLen = cb.k - part3.CRC24A.Width()
		}
		aLen := payloadLen + crcKind.Width()

		sysLLR := cb.motherLLR[:aLen]
		par1LLR := cb.motherLLR[aLen+2 : aLen+2+aLen]
		par2LLR := cb.motherLLR[aLen+2+aLen : aLen+2+aLen+aLen]

		crcOK := func(bits []byte) bool {
			payload := bits[:payloadLen]
			recv := part3.BitsToUint(bits[payloadLen : payloadLen+crcKind.Width()])
			recomputed := part3.Compute(crcKind, payload, 0)
			return recv == recomputed
		}

		bits, _, ok := TurboDecode(sysLLR, par1LLR, par2LLR, maxPdcIterations, minPdcIterations, crcOK)
		if ok {
			cb.decoded = true
			cb.bytes = bitsToBytes(bits[:payloadLen])
		}
		s.cbCursor++
	}
}

// Finalize is called once all codeblocks have been attempted: it
// concatenates surviving codeblocks, checks the TB-CRC for multi-CB TBs,
// and leaves per-codeblock decode state ready for the next rv attempt if
// the TB-CRC fails.
func (s *PdcState) Finalize() (crcStatus bool, payload []byte) {
	allOK := true
	for i := range s.cbs {
		if !s.cbs[i].decoded {
			allOK = false
		}
	}
	if !allOK {
		return false, nil
	}
	if len(s.cbs) == 1 {
		return true, s.cbs[0].bytes
	}
	var full []byte
	for _, cb := range s.cbs {
		full = append(full, bitsOfAll(cb.bytes)...)
	}
	tbPayloadBits := full[:s.cfg.NTBBits]
	recomputed := part3.Compute(part3.CRC24A, tbPayloadBits, 0)
	lastCB := s.cbs[len(s.cbs)-1]
	crcFieldBits := bitsOfAll(lastCB.bytes)[len(lastCB.bytes)*8-part3.CRC24A.Width():]
	received := part3.BitsToUint(crcFieldBits)
	if received != recomputed {
		// False alarm on some CB poisoned the result: reset all CB-CRC
		// flags so the next rv attempt starts fresh.
		for i := range s.cbs {
			s.cbs[i].decoded = false
		}
		return false, nil
	}
	return true, bitsToBytes(tbPayloadBits)
}
