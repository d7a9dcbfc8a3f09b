package radio

import (
	"testing"
	"time"
)

func TestBufferRxWritesAreReadableAndTimeAdvances(t *testing.T) {
	b := NewBufferRx(2, 4, 8, 100, 32000) // 32 samples/antenna ring

	samples := [][]complex64{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
	}
	b.GetAntStreamsNext(0, samples)

	if got := b.RxTimePassed64(); got != 3 {
		t.Fatalf("RxTimePassed64 = %d, want 3 (ts=0, n=4)", got)
	}
	if b.GetAntStreams(0)[0] != 1 || b.GetAntStreams(1)[3] != 8 {
		t.Fatalf("samples not written to the expected ring positions")
	}

	b.GetAntStreamsNext(4, [][]complex64{{9, 10}, {11, 12}})
	if got := b.RxTimePassed64(); got != 5 {
		t.Fatalf("RxTimePassed64 = %d, want 5 after a second write (ts=4,n=2)", got)
	}
}

func TestBufferRxPreStreamSuppressesTimeAdvance(t *testing.T) {
	b := NewBufferRx(1, 4, 8, 100, 32000)
	b.PreStream(true)
	b.GetAntStreamsNext(0, [][]complex64{{1, 2, 3, 4}})
	if got := b.RxTimePassed64(); got != -1 {
		t.Fatalf("RxTimePassed64 should stay at the initial -1 while prestreaming, got %d", got)
	}

	b.PreStream(false)
	b.GetAntStreamsNext(4, [][]complex64{{5, 6, 7, 8}})
	if got := b.RxTimePassed64(); got != 7 {
		t.Fatalf("RxTimePassed64 = %d, want 7 once prestreaming ends", got)
	}
}

func TestBufferRxWaitUntilNTOBlocksUntilWritten(t *testing.T) {
	b := NewBufferRx(1, 4, 8, 1, 1_000_000) // notify after every sample
	done := make(chan struct{})

	go func() {
		b.WaitUntilNTO(99)
		close(done)
	}()

	select {
	case <-done:
		t.Fatalf("WaitUntilNTO returned before the target time was reached")
	case <-time.After(20 * time.Millisecond):
	}

	b.GetAntStreamsNext(0, [][]complex64{make([]complex64, 100)})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("WaitUntilNTO did not unblock after the target time was published")
	}
}
