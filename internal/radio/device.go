package radio

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GainCommand is a timed per-antenna gain change, applied by the device
// at or before AtTime64.
type GainCommand struct {
	AtTime64 int64
	StepDB   []float64
}

// FreqCommand is a timed frequency retune request.
type FreqCommand struct {
	AtTime64 int64
	HzTX     float64
	HzRX     float64
}

// HwDevice is the L0 device abstraction shared by a real radio and a
// simulated one: it owns antenna-stream sample buffers, a monotonic
// sample-counter clock, and timed TX/RX gain and frequency commands. Both
// the real (PortAudio-backed) and virtual (simulation-backed)
// implementations satisfy this so the rest of the stack (BufferRx/
// BufferTxPool owners, tpoint) never branches on which one it is holding.
type HwDevice interface {
	// Start begins streaming; RX samples are written into rx and TX
	// buffers consumed from the pool until ctx is cancelled or Stop is
	// called.
	Start(ctx context.Context, rx *BufferRx, txPool *BufferTxPool) error
	Stop() error

	// Now returns the device's current monotonic sample counter.
	Now() int64

	// ApplyGain and ApplyFreq schedule a timed hardware command.
	ApplyGain(cmd GainCommand) error
	ApplyFreq(cmd FreqCommand) error

	SampleRateHz() float64
	NofAntennas() int
}

// DeviceUnit adapts an HwDevice, plus the RX/TX buffers it streams through,
// to common.LayerUnit so cmd/dectnrp can start/stop the hardware layer
// through the same errgroup-joined common.Layer type it uses for the PHY
// worker layer.
type DeviceUnit struct {
	Dev    HwDevice
	Rx     *BufferRx
	TxPool *BufferTxPool
}

// StartThreads implements common.LayerUnit. HwDevice.Start already spawns
// its own driver goroutine; it is registered on g so a returned error
// cancels the shared context the same way a failing PHY worker would.
func (u *DeviceUnit) StartThreads(ctx context.Context, g *errgroup.Group) error {
	if err := u.Dev.Start(ctx, u.Rx, u.TxPool); err != nil {
		return err
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	return nil
}

// WorkStop implements common.LayerUnit.
func (u *DeviceUnit) WorkStop() {
	u.Dev.Stop()
}
