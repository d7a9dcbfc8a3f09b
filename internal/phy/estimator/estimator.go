// Package estimator turns per-antenna IQ observations of one received
// packet's STF and DRS symbols into a SyncReport: fine peak timing,
// per-antenna RMS, and a CFO estimate, produced by a two-stage
// ProcessStf/ProcessDrs contract.
package estimator

import (
	"math"
	"math/cmplx"
)

// SyncReport is the per-packet synchronizer output.
type SyncReport struct {
	FinePeakTime64 int64
	RMS            []float64 // per antenna
	B              uint32
	U              uint32
	NEffTX         uint32
	CFOHz          float64
}

// StfMeta carries the coarse timing hit that triggered estimator.ProcessStf.
type StfMeta struct {
	FinePeakTime64 int64
}

// DrsMeta carries the spacing in samples between the two DRS repetitions
// and the sample rate, used for CFO estimation from the repeated reference
// sequence.
type DrsMeta struct {
	SymbolSpacingSamples int
	SampleRateHz         float64
}

// Estimator accumulates per-packet state across a Reset, then a
// ProcessStf call, then a ProcessDrs call.
type Estimator struct {
	b      uint32
	nEffTX uint32

	rms    []float64
	cfoHz  float64
	finePeakTime64 int64
}

// New allocates an Estimator sized for nofAntennas.
func New(nofAntennas int) *Estimator {
	return &Estimator{rms: make([]float64, nofAntennas)}
}

// Reset must be called right after a new packet is detected.
func (e *Estimator) Reset(b uint32, nEffTX uint32) {
	e.b = b
	e.nEffTX = nEffTX
	e.cfoHz = 0
	e.finePeakTime64 = 0
	for i := range e.rms {
		e.rms[i] = 0
	}
}

// ProcessStf computes the per-antenna RMS of the STF cells on each
// antenna and records the fine peak time the synchronizer already found.
func (e *Estimator) ProcessStf(cellsPerAntenna [][]complex128, meta StfMeta) {
	e.finePeakTime64 = meta.FinePeakTime64
	for a, cells := range cellsPerAntenna {
		if a >= len(e.rms) {
			break
		}
		var sumSq float64
		for _, c := range cells {
			m := cmplx.Abs(c)
			sumSq += m * m
		}
		if len(cells) > 0 {
			e.rms[a] = math.Sqrt(sumSq / float64(len(cells)))
		}
	}
}

// ProcessDrs estimates CFO from the phase rotation between two DRS
// repetitions spaced meta.SymbolSpacingSamples apart, averaged across
// antennas that produced non-zero RMS during ProcessStf.
func (e *Estimator) ProcessDrs(first, second [][]complex128, meta DrsMeta) {
	var sumPhase float64
	var n int
	for a := range first {
		if a >= len(e.rms) || e.rms[a] <= 0 {
			continue
		}
		for i := range first[a] {
			if i >= len(second[a]) {
				break
			}
			corr := second[a][i] * cmplx.Conj(first[a][i])
			if cmplx.Abs(corr) == 0 {
				continue
			}
			sumPhase += cmplx.Phase(corr)
			n++
		}
	}
	if n == 0 || meta.SymbolSpacingSamples == 0 || meta.SampleRateHz == 0 {
		return
	}
	avgPhase := sumPhase / float64(n)
	// phase = 2*pi*cfo*dt  =>  cfo = phase / (2*pi*dt)
	dt := float64(meta.SymbolSpacingSamples) / meta.SampleRateHz
	e.cfoHz = avgPhase / (2 * math.Pi * dt)
}

// Report assembles the SyncReport for this packet, u is supplied by the
// caller since it is a static device-class property, not something the
// estimator derives from samples.
func (e *Estimator) Report(u uint32) SyncReport {
	rms := make([]float64, len(e.rms))
	copy(rms, e.rms)
	return SyncReport{
		FinePeakTime64: e.finePeakTime64,
		RMS:            rms,
		B:              e.b,
		U:              u,
		NEffTX:         e.nEffTX,
		CFOHz:          e.cfoHz,
	}
}
