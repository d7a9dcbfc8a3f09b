package simulation

import (
	"math"
	"math/rand"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// NoiseModel adds the global additive-noise contribution in place, either
// relative to the received signal's power or absolute/thermal.
type NoiseModel interface {
	AddNoise(rxIQ [][]complex64)
}

// RelativeSNRNoise adds AWGN so the resulting SNR, measured over the
// signal bandwidth, is TargetSNRdB.
type RelativeSNRNoise struct {
	TargetSNRdB float64
	rng         *rand.Rand
}

func NewRelativeSNRNoise(targetSNRdB float64, seed int64) *RelativeSNRNoise {
	return &RelativeSNRNoise{TargetSNRdB: targetSNRdB, rng: rand.New(rand.NewSource(seed))}
}

func (n *RelativeSNRNoise) AddNoise(rxIQ [][]complex64) {
	for a, stream := range rxIQ {
		var sumSq float64
		for _, s := range stream {
			m := float64(real(s))*float64(real(s)) + float64(imag(s))*float64(imag(s))
			sumSq += m
		}
		if len(stream) == 0 {
			continue
		}
		sigPower := sumSq / float64(len(stream))
		noisePower := sigPower / common.DBToLinear(n.TargetSNRdB)
		sigma := math.Sqrt(noisePower / 2)
		for i := range stream {
			rxIQ[a][i] += complex64(complex(n.rng.NormFloat64()*sigma, n.rng.NormFloat64()*sigma))
		}
	}
}

// ThermalNoise adds AWGN at the absolute thermal floor -174 +
// 10*log10(fs) + NF dBm (see common.ThermalNoiseDBm).
type ThermalNoise struct {
	SampleRateHz  float64
	NoiseFigureDB float64
	rng           *rand.Rand
}

func NewThermalNoise(sampleRateHz, noiseFigureDB float64, seed int64) *ThermalNoise {
	return &ThermalNoise{SampleRateHz: sampleRateHz, NoiseFigureDB: noiseFigureDB, rng: rand.New(rand.NewSource(seed))}
}

func (n *ThermalNoise) AddNoise(rxIQ [][]complex64) {
	dBm := common.ThermalNoiseDBm(n.SampleRateHz, n.NoiseFigureDB)
	// dBm -> linear power in mW, then to a dimensionless 0dBFS-referenced
	// scale the same way the source's virtual space treats simulated
	// amplitudes: mW relative to a 1.0-amplitude full-scale tone at 0dBm.
	noisePower := common.DBToLinear(dBm)
	sigma := math.Sqrt(noisePower / 2)
	for a, stream := range rxIQ {
		for i := range stream {
			rxIQ[a][i] += complex64(complex(n.rng.NormFloat64()*sigma, n.rng.NormFloat64()*sigma))
		}
	}
}
