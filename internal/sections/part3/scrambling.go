package part3

import "sync"

// goldSequence implements the LTE pseudo-random (Gold) sequence generator
// of 3GPP TS 36.211 §7.2: two length-31 m-sequences combined, x1 seeded to
// a fixed all-but-last-1 pattern, x2 seeded from cInit. This is the
// LTE-PR sequence used for PDC scrambling.
func goldSequence(cInit uint32, length int) []byte {
	const ncSkip = 1600
	x1 := make([]byte, 31+length+ncSkip)
	x2 := make([]byte, 31+length+ncSkip)
	x1[0] = 1
	for i := 0; i < 31; i++ {
		x2[i] = byte((cInit >> uint(i)) & 1)
	}
	for n := 0; n < length+ncSkip; n++ {
		x1[n+31] = (x1[n+3] + x1[n]) % 2
		x2[n+31] = (x2[n+3] + x2[n+2] + x2[n+1] + x2[n]) % 2
	}
	out := make([]byte, length)
	for n := 0; n < length; n++ {
		out[n] = (x1[n+ncSkip] + x2[n+ncSkip]) % 2
	}
	return out
}

// PccScramblingGInit is the fixed seed mandated for PCC: g_init =
// 0x44454354 ("DECT" in ASCII).
const PccScramblingGInit uint32 = 0x44454354

// PccScramblingLength is ceil(196/8)*8 = 200 bits.
const PccScramblingLength = 200

var pccSeqOnce sync.Once
var pccSeq []byte

// PccSequence returns the single fixed PCC scrambling sequence, computed
// once and cached (object lifetime, same as ScramblingPdc below).
func PccSequence() []byte {
	pccSeqOnce.Do(func() {
		pccSeq = goldSequence(PccScramblingGInit, PccScramblingLength)
	})
	return pccSeq
}

// cInitFor combines network_id and PLCF type into the Gold-sequence seed:
// type-1 uses the 8 LSB, type-2 the 24 MSB, of the 32-bit network id.
func cInitFor(networkID uint32, plcfType int) uint32 {
	if plcfType == 1 {
		return networkID & 0xFF
	}
	return networkID >> 8 // 24 MSB
}

// ScramblingPdc is a precomputed, append-only cache of PDC scrambling
// sequences keyed by (network_id, plcf_type): one entry per such pair,
// inserted before first use, living as long as the cache itself. Safe for
// concurrent readers once an entry exists; insertion is guarded by a mutex
// since multiple tpoints/HARQ processes may request the same network id's
// sequence for the first time concurrently.
type ScramblingPdc struct {
	gMax int

	mu      sync.RWMutex
	entries map[uint64][]byte
}

// NewScramblingPdc preallocates nothing eagerly; gMax is the maximum PDC G
// across the device class, used to size each freshly generated sequence.
func NewScramblingPdc(gMax int) *ScramblingPdc {
	return &ScramblingPdc{gMax: gMax, entries: make(map[uint64][]byte)}
}

func key(networkID uint32, plcfType int) uint64 {
	return uint64(networkID)<<8 | uint64(plcfType&0xFF)
}

// Get returns the scrambling sequence for (networkID, plcfType),
// generating and caching it on first use.
func (s *ScramblingPdc) Get(networkID uint32, plcfType int) []byte {
	k := key(networkID, plcfType)
	s.mu.RLock()
	if seq, ok := s.entries[k]; ok {
		s.mu.RUnlock()
		return seq
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq, ok := s.entries[k]; ok {
		return seq
	}
	seq := goldSequence(cInitFor(networkID, plcfType), s.gMax)
	s.entries[k] = seq
	return seq
}

// ScrambleAt XORs n bits of seq, starting at bit offset wp, into bits in
// place — the bit-offset variant needed for PDC's incremental
// per-codeblock scrambling.
func ScrambleAt(seq []byte, wp int, bits []byte) {
	for i, b := range bits {
		bits[i] = b ^ seq[(wp+i)%len(seq)]
	}
}
