package simulation

import (
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// Channel filters one TX endpoint's per-antenna IQ on its way to one RX
// endpoint: the per-edge channel model
// ({awgn, flat, doubly_<pdp_idx>_<tau_rms_ns>_<fD_Hz>}).
type Channel interface {
	Apply(txIQ [][]complex64) [][]complex64
}

// NoiseChannel is the narrower interface the intra-device leakage path
// uses: same shape as Channel, named separately since leakage is
// conceptually distinct from inter-device propagation even though the Go
// implementation is identical.
type NoiseChannel = Channel

// AWGNChannel passes the signal through unmodified; additive noise is
// applied later by the global NoiseModel, so this channel exists purely
// to occupy the {awgn} edge-name slot in the fabric.
type AWGNChannel struct{}

func (AWGNChannel) Apply(txIQ [][]complex64) [][]complex64 { return txIQ }

// FlatRayleighChannel applies one complex Rayleigh-faded tap per antenna,
// redrawn every call: output antenna a carries only input antenna a, and no
// cross-antenna (TX/RX antenna pair) taps are formed.
type FlatRayleighChannel struct {
	rng *rand.Rand
}

func NewFlatRayleighChannel(seed int64) *FlatRayleighChannel {
	return &FlatRayleighChannel{rng: rand.New(rand.NewSource(seed))}
}

func (c *FlatRayleighChannel) Apply(txIQ [][]complex64) [][]complex64 {
	out := make([][]complex64, len(txIQ))
	for a, stream := range txIQ {
		re := c.rng.NormFloat64() / math.Sqrt2
		im := c.rng.NormFloat64() / math.Sqrt2
		tap := complex64(complex(re, im))
		out[a] = make([]complex64, len(stream))
		for i, s := range stream {
			out[a][i] = s * tap
		}
	}
	return out
}

// PDPTap is one tap of a sparse power-delay profile: relative delay (as a
// fraction of tau_rms) and relative linear power.
type PDPTap struct {
	DelayFrac float64
	Power     float64
}

// Three named PDP profiles, time-scaled at construction to the requested
// tau_rms_ns.
var (
	PDPProfilePedestrian = []PDPTap{{0, 1.0}, {0.4, 0.3}, {1.0, 0.1}}
	PDPProfileVehicular  = []PDPTap{{0, 1.0}, {0.2, 0.5}, {0.5, 0.3}, {1.2, 0.15}, {2.3, 0.05}}
	PDPProfileIndoor     = []PDPTap{{0, 1.0}, {0.1, 0.7}, {0.3, 0.4}}
)

// sinusoid is one oscillator of the sum-of-sinusoids Doppler model.
type sinusoid struct {
	freqHz float64
	phase  float64
}

// DoublySelectiveChannel is a sum-of-sinusoids Jakes/Clarke Doppler
// simulator over a sparse PDP, time-scaled to tauRmsNs, with a 2*spp
// history buffer for the per-tap complex multiply-add.
type DoublySelectiveChannel struct {
	sampleRateHz float64
	taps         []PDPTap
	delaysSamp   []int
	oscPerTap    [][]sinusoid

	history [][]complex64 // per antenna, length 2*spp
	spp     int
	t       int64
}

// NewDoublySelectiveChannel builds the Doppler oscillator bank (nOsc sum-
// of-sinusoids terms per tap, Jakes/Clarke-distributed frequencies) for
// the given PDP profile, scaled so the profile's unit delay corresponds
// to tauRmsNs nanoseconds, with maximum Doppler fDHz.
func NewDoublySelectiveChannel(pdp []PDPTap, tauRmsNs, fDHz, sampleRateHz float64, spp int, nOsc int, seed int64) *DoublySelectiveChannel {
	common.Assert(spp > 0, "simulation: spp must be positive")
	rng := rand.New(rand.NewSource(seed))

	delaysSamp := make([]int, len(pdp))
	oscPerTap := make([][]sinusoid, len(pdp))
	for i, tap := range pdp {
		delaysSamp[i] = int(tap.DelayFrac * tauRmsNs * 1e-9 * sampleRateHz)
		oscs := make([]sinusoid, nOsc)
		for k := 0; k < nOsc; k++ {
			theta := 2 * math.Pi * rng.Float64()
			alpha := (2*math.Pi*float64(k) + theta) / float64(nOsc)
			oscs[k] = sinusoid{
				freqHz: fDHz * math.Cos(alpha),
				phase:  2 * math.Pi * rng.Float64(),
			}
		}
		oscPerTap[i] = oscs
	}

	return &DoublySelectiveChannel{
		sampleRateHz: sampleRateHz,
		taps:         pdp,
		delaysSamp:   delaysSamp,
		oscPerTap:    oscPerTap,
		spp:          spp,
	}
}

// tapGain evaluates the sum-of-sinusoids fading process for tap idx at
// absolute sample time t.
func (c *DoublySelectiveChannel) tapGain(idx int, t int64) complex128 {
	var sum complex128
	tSec := float64(t) / c.sampleRateHz
	n := float64(len(c.oscPerTap[idx]))
	for _, osc := range c.oscPerTap[idx] {
		ph := 2*math.Pi*osc.freqHz*tSec + osc.phase
		sum += cmplx.Rect(1, ph)
	}
	power := c.taps[idx].Power
	return sum / complex(math.Sqrt(n), 0) * complex(math.Sqrt(power), 0)
}

// Apply filters txIQ through the tapped-delay-line Doppler channel,
// maintaining a 2*spp rolling history per antenna so taps reaching back
// before this call's block are available.
func (c *DoublySelectiveChannel) Apply(txIQ [][]complex64) [][]complex64 {
	if c.history == nil {
		c.history = make([][]complex64, len(txIQ))
		for a := range c.history {
			c.history[a] = make([]complex64, 2*c.spp)
		}
	}

	out := make([][]complex64, len(txIQ))
	for a, stream := range txIQ {
		buf := append(append([]complex64{}, c.history[a][c.spp:]...), stream...)
		res := make([]complex64, len(stream))
		for i := range stream {
			var acc complex128
			for ti, delay := range c.delaysSamp {
				srcIdx := len(buf) - len(stream) + i - delay
				if srcIdx < 0 || srcIdx >= len(buf) {
					continue
				}
				gain := c.tapGain(ti, c.t+int64(i))
				acc += complex128(buf[srcIdx]) * gain
			}
			res[i] = complex64(acc)
		}
		out[a] = res
		c.history[a] = append(c.history[a][len(stream):], stream...)
	}
	c.t += int64(c.spp)
	return out
}
