package resampler

import (
	"math"
	"testing"
)

func TestGetNSamplesAfterResamplingMatchesOutputLength(t *testing.T) {
	r := New(10, 9, 60)
	const n = 900
	want := r.GetNSamplesAfterResampling(n)
	got := r.Resample(make([]float64, n), n)
	if len(got) != want {
		t.Fatalf("Resample produced %d samples, GetNSamplesAfterResampling predicted %d", len(got), want)
	}
}

func TestKernelForNamedUSRPRates(t *testing.T) {
	if k := New(10, 9, 60).Kernel(); k != KernelL10M9_223 && k != KernelGeneric {
		t.Fatalf("unexpected kernel %v for L=10,M=9", k)
	}
	if k := New(9, 10, 60).Kernel(); k != KernelL9M10_223 && k != KernelGeneric {
		t.Fatalf("unexpected kernel %v for L=9,M=10", k)
	}
}

// TestResampleDCGainNearUnity checks that a constant (DC) input is passed
// through near its original amplitude once the filter history has filled
// — the polyphase lowpass should have ~unity DC gain after the L-scaling
// baked into DesignLowpass.
func TestResampleDCGainNearUnity(t *testing.T) {
	r := New(10, 9, 60)
	const n = 2000
	input := make([]float64, n)
	for i := range input {
		input[i] = 1.0
	}
	out := r.Resample(input, n)

	// Skip the filter's transient at the start; average over the settled
	// tail where history has fully flushed the initial zeros.
	tailStart := len(out) / 2
	var sum float64
	for _, v := range out[tailStart:] {
		sum += v
	}
	mean := sum / float64(len(out)-tailStart)
	if math.Abs(mean-1.0) > 0.05 {
		t.Fatalf("settled DC output mean = %f, want close to 1.0", mean)
	}
}

func TestResampleFinalSamplesDrainsHistory(t *testing.T) {
	r := New(10, 9, 60)
	r.Resample(make([]float64, 100), 100)
	tail := r.ResampleFinalSamples()
	if len(tail) != r.GetNSamplesAfterResampling(len(r.history)) {
		t.Fatalf("ResampleFinalSamples length = %d, want %d", len(tail), r.GetNSamplesAfterResampling(len(r.history)))
	}
}
