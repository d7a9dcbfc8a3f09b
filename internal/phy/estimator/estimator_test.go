package estimator

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestProcessStfComputesPerAntennaRMS(t *testing.T) {
	e := New(2)
	e.Reset(1, 2)

	cells := [][]complex128{
		{complex(3, 4), complex(3, 4)}, // |.|=5 each antenna 0
		{complex(1, 0), complex(1, 0)}, // |.|=1 antenna 1
	}
	e.ProcessStf(cells, StfMeta{FinePeakTime64: 12345})

	report := e.Report(1)
	if report.FinePeakTime64 != 12345 {
		t.Fatalf("FinePeakTime64 = %d, want 12345", report.FinePeakTime64)
	}
	if math.Abs(report.RMS[0]-5.0) > 1e-9 {
		t.Fatalf("antenna 0 RMS = %v, want 5.0", report.RMS[0])
	}
	if math.Abs(report.RMS[1]-1.0) > 1e-9 {
		t.Fatalf("antenna 1 RMS = %v, want 1.0", report.RMS[1])
	}
}

func TestProcessDrsRecoversKnownCFO(t *testing.T) {
	e := New(1)
	e.Reset(1, 1)
	e.ProcessStf([][]complex128{{complex(1, 0)}}, StfMeta{})

	const sampleRate = 1.0e6
	const spacing = 100
	const trueCFO = 500.0 // Hz

	dt := float64(spacing) / sampleRate
	phase := 2 * math.Pi * trueCFO * dt

	first := [][]complex128{{1, 1, 1}}
	second := [][]complex128{{cmplx.Rect(1, phase), cmplx.Rect(1, phase), cmplx.Rect(1, phase)}}

	e.ProcessDrs(first, second, DrsMeta{SymbolSpacingSamples: spacing, SampleRateHz: sampleRate})

	report := e.Report(1)
	if math.Abs(report.CFOHz-trueCFO) > 1.0 {
		t.Fatalf("estimated CFO = %v Hz, want close to %v Hz", report.CFOHz, trueCFO)
	}
}

func TestResetClearsPriorPacketState(t *testing.T) {
	e := New(1)
	e.Reset(1, 1)
	e.ProcessStf([][]complex128{{complex(10, 0)}}, StfMeta{FinePeakTime64: 999})

	e.Reset(2, 3)
	report := e.Report(4)
	if report.RMS[0] != 0 {
		t.Fatalf("RMS should be cleared after Reset, got %v", report.RMS[0])
	}
	if report.FinePeakTime64 != 0 {
		t.Fatalf("FinePeakTime64 should be cleared after Reset, got %d", report.FinePeakTime64)
	}
	if report.B != 2 || report.NEffTX != 3 || report.U != 4 {
		t.Fatalf("Report did not reflect the new Reset(b=2, nEffTX=3)/Report(u=4) values: %+v", report)
	}
}
