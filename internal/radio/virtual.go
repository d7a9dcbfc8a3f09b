package radio

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// RxSource produces the next block of per-antenna RX samples for a
// virtual device, starting at absolute sample index ts. Implemented by
// internal/simulation.VirtualSpace so radio stays independent of the
// simulation package (no import cycle).
type RxSource interface {
	NextRxBlock(ts int64, n int) [][]complex64
}

// TxSink consumes a transmitted buffer, e.g. to leak it into a simulated
// channel so other virtual devices can receive it.
type TxSink interface {
	SubmitTx(b *BufferTx, sampleRateHz float64)
}

// VirtualDevice is the simulator-backed HwDevice implementation, used
// alongside the real one. It advances its own sample clock on a
// fixed-period ticker (standing in for a sound-card interrupt/DMA
// callback) rather than depending on wall-clock audio hardware.
type VirtualDevice struct {
	sampleRateHz float64
	nofAntennas  int
	blockSamples int

	source RxSource
	sink   TxSink

	clock atomic.Int64

	stop chan struct{}
	done chan struct{}
}

// NewVirtualDevice builds a simulated device; source/sink may be nil
// until internal/simulation wires a VirtualSpace in (useful for
// construction-order-independent tests).
func NewVirtualDevice(sampleRateHz float64, nofAntennas, blockSamples int, source RxSource, sink TxSink) *VirtualDevice {
	common.Assert(sampleRateHz > 0, "radio: virtual device needs a positive sample rate")
	common.Assert(nofAntennas > 0, "radio: virtual device needs at least one antenna")
	common.Assert(blockSamples > 0, "radio: virtual device needs a positive block size")
	return &VirtualDevice{
		sampleRateHz: sampleRateHz,
		nofAntennas:  nofAntennas,
		blockSamples: blockSamples,
		source:       source,
		sink:         sink,
	}
}

// SetSource/SetSink let internal/simulation attach a VirtualSpace after
// construction, breaking the radio<->simulation dependency cycle.
func (d *VirtualDevice) SetSource(s RxSource) { d.source = s }
func (d *VirtualDevice) SetSink(s TxSink)      { d.sink = s }

func (d *VirtualDevice) Start(ctx context.Context, rx *BufferRx, txPool *BufferTxPool) error {
	d.stop = make(chan struct{})
	d.done = make(chan struct{})

	period := time.Duration(float64(d.blockSamples) / d.sampleRateHz * float64(time.Second))
	if period <= 0 {
		period = time.Microsecond
	}

	go func() {
		defer close(d.done)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stop:
				return
			case <-ticker.C:
				ts := d.clock.Load()
				var block [][]complex64
				if d.source != nil {
					block = d.source.NextRxBlock(ts, d.blockSamples)
				} else {
					block = make([][]complex64, d.nofAntennas)
					for a := range block {
						block[a] = make([]complex64, d.blockSamples)
					}
				}
				rx.GetAntStreamsNext(ts, block)
				d.clock.Store(ts + int64(d.blockSamples))

				d.drainTx(txPool)
			}
		}
	}()
	return nil
}

// drainTx simulates "hardware reports completion" for any filled TX
// buffer by leaking it to the sink (if attached) and releasing it back
// to the pool.
func (d *VirtualDevice) drainTx(txPool *BufferTxPool) {
	now := d.clock.Load()
	txPool.ScanDue(now, func(b *BufferTx) {
		if d.sink != nil {
			d.sink.SubmitTx(b, d.sampleRateHz)
		}
	})
}

func (d *VirtualDevice) Stop() error {
	if d.stop != nil {
		close(d.stop)
		<-d.done
	}
	return nil
}

func (d *VirtualDevice) Now() int64 { return d.clock.Load() }

func (d *VirtualDevice) ApplyGain(GainCommand) error { return nil }
func (d *VirtualDevice) ApplyFreq(FreqCommand) error { return nil }

func (d *VirtualDevice) SampleRateHz() float64 { return d.sampleRateHz }
func (d *VirtualDevice) NofAntennas() int      { return d.nofAntennas }
