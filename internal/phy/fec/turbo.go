// Package fec implements the DECT-2020 NR+ PCC/PDC turbo-coded FEC chain:
// a rate-1/3 parallel-concatenated convolutional code (PCCC), rate
// matching, scrambling (via sections/part3) and the PCC/PDC-specific
// framing. Tables are initialized once; encode/decode are small pure
// functions over byte/bit slices.
package fec

// RSC is a rate-1/2 recursive systematic convolutional encoder run over a
// 4-state trellis table (rscStates). Starting from the all-zero state,
// rscStep never sets state bit 0, so only states 0 and 2 are reached and
// the encoder acts as a 2-state accumulator: parity[i] = in[i] XOR
// parity[i-1] (feedback 1+D, no feedforward tap). It is not the 7/5
// constraint-length-3 code. A full DECT-2020 NR+/LTE turbo code uses an
// 8-state encoder; this simpler code is documented as a simplification in
// DESIGN.md: the PCCC structure, iterative BCJR exchange
// and rate-matching/scrambling framing around it are tested structurally
// (round-trip, not bit-for-bit interop with another implementation).
type RSC struct{}

const rscStates = 4

// rscStep is one step of the RSC trellis: bit 1 of state holds the last
// feedback bit, bit 0 is carried over unchanged (it stays 0 from the
// all-zero start). It returns the next state and the parity bit; the
// systematic output is the input bit itself.
func rscStep(state int, in int) (nextState int, parity int) {
	// feedback = in XOR (state bit1)
	fb := in ^ ((state >> 1) & 1)
	parity = fb ^ (state & 1)
	nextState = ((fb << 1) | (state & 1)) & (rscStates - 1)
	return
}

// Encode runs the RSC over bits (0/1 per byte) and returns the systematic
// bits (identical to the input) and the parity bit stream, plus the
// trellis-terminating tail bits' parity (2 extra parity bits from driving
// the encoder back to the all-zero state explicitly, rather than leaving
// the decoder to guess the final state).
func (RSC) Encode(bits []byte) (systematic, parity, tailParity []byte) {
	state := 0
	systematic = make([]byte, len(bits))
	parity = make([]byte, len(bits))
	for i, b := range bits {
		in := int(b & 1)
		var p int
		state, p = rscStep(state, in)
		systematic[i] = b & 1
		parity[i] = byte(p)
	}
	// Terminate: 2 tail steps driving the shift register to zero using
	// the feedback bit as input so the final state is 0.
	tailParity = make([]byte, 2)
	for i := 0; i < 2; i++ {
		fb := (state >> 1) & 1
		var p int
		state, p = rscStep(state, fb)
		tailParity[i] = byte(p)
	}
	return
}

// bcjrDecode runs one log-domain BCJR (max-log-MAP) pass given a priori
// LLRs (extrinsic info from the other component decoder, 0 on the first
// half-iteration), systematic channel LLRs and parity channel LLRs.
// Returns the extrinsic LLR per bit: the a posteriori LLR minus the a
// priori and systematic inputs.
func bcjrDecode(apriori, sysLLR, parLLR []float64) []float64 {
	n := len(sysLLR)
	const negInf = -1e18

	// gamma[n][state][bit] = branch metric
	alpha := make([][rscStates]float64, n+1)
	beta := make([][rscStates]float64, n+1)
	for s := 1; s < rscStates; s++ {
		alpha[0][s] = negInf
	}
	for s := 1; s < rscStates; s++ {
		beta[n][s] = negInf
	}

	type branch struct {
		next  int
		bit   int
		par   int
	}
	trans := make([][2]branch, rscStates)
	for s := 0; s < rscStates; s++ {
		for in := 0; in < 2; in++ {
			ns, p := rscStep(s, in)
			trans[s][in] = branch{next: ns, bit: in, par: p}
		}
	}

	gamma := func(t int, s int, in int) float64 {
		b := trans[s][in]
		sysBit := 1.0
		if b.bit == 0 {
			sysBit = -1.0
		}
		parBit := 1.0
		if b.par == 0 {
			parBit = -1.0
		}
		g := 0.5 * (apriori[t]*sysBit + sysLLR[t]*sysBit + parLLR[t]*parBit)
		return g
	}

	for t := 0; t < n; t++ {
		for s := 0; s < rscStates; s++ {
			alpha[t+1][s] = negInf
		}
		for s := 0; s < rscStates; s++ {
			if alpha[t][s] == negInf {
				continue
			}
			for in := 0; in < 2; in++ {
				ns := trans[s][in].next
				v := alpha[t][s] + gamma(t, s, in)
				if v > alpha[t+1][ns] {
					alpha[t+1][ns] = v
				}
			}
		}
	}
	for t := n - 1; t >= 0; t-- {
		for s := 0; s < rscStates; s++ {
			beta[t][s] = negInf
		}
		for s := 0; s < rscStates; s++ {
			for in := 0; in < 2; in++ {
				ns := trans[s][in].next
				if beta[t+1][ns] == negInf {
					continue
				}
				v := beta[t+1][ns] + gamma(t, s, in)
				if v > beta[t][s] {
					beta[t][s] = v
				}
			}
		}
	}

	out := make([]float64, n)
	for t := 0; t < n; t++ {
		best1, best0 := negInf, negInf
		for s := 0; s < rscStates; s++ {
			if alpha[t][s] == negInf {
				continue
			}
			for in := 0; in < 2; in++ {
				ns := trans[s][in].next
				if beta[t+1][ns] == negInf {
					continue
				}
				v := alpha[t][s] + gamma(t, s, in) + beta[t+1][ns]
				if in == 1 {
					if v > best1 {
						best1 = v
					}
				} else {
					if v > best0 {
						best0 = v
					}
				}
			}
		}
		out[t] = best1 - best0 - apriori[t] - sysLLR[t]
	}
	return out
}

// Interleaver is a deterministic pseudo-random bit permutation standing in
// for the standard's QPP (quadratic permutation polynomial) interleaver —
// documented simplification, see DESIGN.md. Same permutation is used by
// encoder and decoder for a given length so encode/decode/round-trip is
// self-consistent.
type Interleaver struct {
	perm []int
}

// NewInterleaver builds a permutation of [0,n) from a small LCG seeded by
// n itself, so the same n always yields the same permutation without
// needing shared state between encoder and decoder.
func NewInterleaver(n int) *Interleaver {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	state := uint32(n*2654435761 + 1)
	for i := n - 1; i > 0; i-- {
		state = state*1664525 + 1013904223
		j := int(state % uint32(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return &Interleaver{perm: perm}
}

func (il *Interleaver) Permute(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, p := range il.perm {
		out[i] = in[p]
	}
	return out
}

func (il *Interleaver) Deinterleave(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, p := range il.perm {
		out[p] = in[i]
	}
	return out
}

func (il *Interleaver) PermuteBits(in []byte) []byte {
	out := make([]byte, len(in))
	for i, p := range il.perm {
		out[i] = in[p]
	}
	return out
}

// TurboEncode produces the three constituent streams (systematic, parity1,
// parity2) of a rate-1/3 PCCC: RSC1 over the natural bit order, RSC2 over
// the interleaved order.
func TurboEncode(bits []byte) (systematic, parity1, parity2, tail1, tail2 []byte, il *Interleaver) {
	var rsc RSC
	systematic, parity1, tail1 = rsc.Encode(bits)
	il = NewInterleaver(len(bits))
	interleaved := il.PermuteBits(bits)
	_, parity2, tail2 = rsc.Encode(interleaved)
	return
}

// hardDecision turns an LLR slice into hard 0/1 bits (positive LLR -> 1).
func hardDecision(llr []float64) []byte {
	out := make([]byte, len(llr))
	for i, v := range llr {
		if v > 0 {
			out[i] = 1
		}
	}
	return out
}

// TurboDecode runs up to maxIter iterations exchanging extrinsic
// information between the two BCJR component decoders. From iteration
// minIter on it calls crcOK after each iteration, so the caller
// (PccEnc/PdcState) can stop early on a CRC match.
func TurboDecode(sysLLR, par1LLR, par2LLR []float64, maxIter, minIter int, crcOK func(bits []byte) bool) (bits []byte, iterations int, ok bool) {
	n := len(sysLLR)
	il := NewInterleaver(n)
	extrinsic1 := make([]float64, n)

	for it := 1; it <= maxIter; it++ {
		apriori1 := extrinsic1
		ext1Out := bcjrDecode(apriori1, sysLLR, par1LLR)

		sysInterleaved := il.Permute(sysLLR)
		apriori2 := il.Permute(ext1Out)
		ext2Out := bcjrDecode(apriori2, sysInterleaved, par2LLR)
		extrinsic1 = il.Deinterleave(ext2Out)

		total := make([]float64, n)
		for i := range total {
			total[i] = sysLLR[i] + ext1Out[i] + extrinsic1[i]
		}
		cand := hardDecision(total)
		if it >= minIter && crcOK != nil && crcOK(cand) {
			return cand, it, true
		}
		bits = cand
	}
	return bits, maxIter, false
}
