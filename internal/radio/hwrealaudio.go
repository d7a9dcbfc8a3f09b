package radio

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/warthog618/go-gpiocdev"
	"github.com/xylo04/goHamlib"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// RealDeviceConfig describes the sound-card, PTT line and rig the real
// HwDevice drives.
type RealDeviceConfig struct {
	NofAntennas  int
	SampleRateHz float64
	FramesPerBuf int

	PTTChip   string // e.g. "gpiochip0"
	PTTOffset int

	// RigModel/RigPort select a Hamlib-backed rig. If RigModel is 0 and
	// RigPort is set, RawSerialBaud selects a raw-CAT serial fallback
	// instead (for rigs Hamlib doesn't model).
	RigModel int
	RigPort  string

	RawSerialBaud int
}

// RealDevice is the PortAudio-backed HwDevice. PTT is asserted around the
// TX window through a GPIO line; frequency and gain commands are issued
// either through Hamlib rig control or, when no Hamlib model is
// configured, a raw-CAT serial fallback.
type RealDevice struct {
	cfg RealDeviceConfig

	stream *portaudio.Stream
	ptt    *gpiocdev.Line
	rig    *goHamlib.Rig
	serial *RawSerial

	clock atomic.Int64

	rx     *BufferRx
	txPool *BufferTxPool

	pendingGain atomic.Value // GainCommand
	pendingFreq atomic.Value // FreqCommand
}

// NewRealDevice opens the PTT GPIO line and the rig control session, but
// does not yet start audio streaming (that happens in Start).
func NewRealDevice(cfg RealDeviceConfig) (*RealDevice, error) {
	common.Assert(cfg.NofAntennas > 0, "radio: real device needs at least one antenna")

	d := &RealDevice{cfg: cfg}

	if cfg.PTTChip != "" {
		line, err := gpiocdev.RequestLine(cfg.PTTChip, cfg.PTTOffset, gpiocdev.AsOutput(0))
		if err != nil {
			return nil, fmt.Errorf("radio: request PTT line: %w", err)
		}
		d.ptt = line
	}

	switch {
	case cfg.RigModel != 0:
		rig := goHamlib.NewRig(cfg.RigModel)
		if err := rig.Open(cfg.RigPort); err != nil {
			return nil, fmt.Errorf("radio: open rig: %w", err)
		}
		d.rig = rig
	case cfg.RigPort != "":
		baud := cfg.RawSerialBaud
		if baud == 0 {
			baud = 9600
		}
		s, err := OpenRawSerial(cfg.RigPort, baud)
		if err != nil {
			return nil, err
		}
		d.serial = s
	}

	return d, nil
}

// setPTT asserts or releases the TX-enable GPIO line around a TX window.
func (d *RealDevice) setPTT(on bool) {
	if d.ptt == nil {
		return
	}
	v := 0
	if on {
		v = 1
	}
	_ = d.ptt.SetValue(v)
}

func (d *RealDevice) callback(in, out []float32) {
	n := len(out) / d.cfg.NofAntennas
	ts := d.clock.Load()

	if d.rx != nil && len(in) > 0 {
		block := make([][]complex64, d.cfg.NofAntennas)
		for a := range block {
			block[a] = make([]complex64, n)
			for i := 0; i < n; i++ {
				idx := i*d.cfg.NofAntennas + a
				if idx < len(in) {
					block[a][i] = complex(in[idx], 0)
				}
			}
		}
		d.rx.GetAntStreamsNext(ts, block)
	}

	anyTX := false
	if d.txPool != nil {
		d.txPool.ScanDue(ts+int64(n), func(b *BufferTx) {
			anyTX = true
			for i := 0; i < n && i < len(b.IQPerAntenna[0]); i++ {
				for a := 0; a < d.cfg.NofAntennas; a++ {
					idx := i*d.cfg.NofAntennas + a
					if idx < len(out) {
						out[idx] += real(b.IQPerAntenna[a][i])
					}
				}
			}
		})
	}
	d.setPTT(anyTX)

	d.clock.Store(ts + int64(n))
}

func (d *RealDevice) Start(ctx context.Context, rx *BufferRx, txPool *BufferTxPool) error {
	d.rx = rx
	d.txPool = txPool

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("radio: portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(
		d.cfg.NofAntennas, d.cfg.NofAntennas,
		d.cfg.SampleRateHz, d.cfg.FramesPerBuf,
		d.callback,
	)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("radio: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		portaudio.Terminate()
		return fmt.Errorf("radio: start stream: %w", err)
	}
	d.stream = stream

	go func() {
		<-ctx.Done()
		_ = d.Stop()
	}()
	return nil
}

func (d *RealDevice) Stop() error {
	if d.stream != nil {
		_ = d.stream.Stop()
		_ = d.stream.Close()
		portaudio.Terminate()
		d.stream = nil
	}
	if d.ptt != nil {
		_ = d.ptt.Close()
	}
	if d.rig != nil {
		_ = d.rig.Close()
	}
	if d.serial != nil {
		_ = d.serial.Close()
	}
	return nil
}

func (d *RealDevice) Now() int64 { return d.clock.Load() }

// ApplyGain issues a Hamlib gain-level command. The timed "at AtTime64"
// aspect is honored by the caller invoking this close to the deadline;
// Hamlib itself has no sample-accurate scheduling hook. Raw-CAT rigs have
// no standard gain command, so this is a no-op on that path.
func (d *RealDevice) ApplyGain(cmd GainCommand) error {
	if d.rig == nil || len(cmd.StepDB) == 0 {
		return nil
	}
	return d.rig.SetLevel(goHamlib.LevelAF, cmd.StepDB[0])
}

// ApplyFreq issues timed TX/RX retune commands, via Hamlib when a rig
// model is configured or via the raw-CAT serial fallback otherwise.
func (d *RealDevice) ApplyFreq(cmd FreqCommand) error {
	switch {
	case d.rig != nil:
		if cmd.HzRX > 0 {
			if err := d.rig.SetFreq(goHamlib.VFOCurrent, cmd.HzRX); err != nil {
				return err
			}
		}
		if cmd.HzTX > 0 {
			return d.rig.SetSplitFreq(goHamlib.VFOCurrent, cmd.HzTX)
		}
		return nil
	case d.serial != nil:
		hz := cmd.HzRX
		if hz == 0 {
			hz = cmd.HzTX
		}
		return d.serial.WriteCAT(catSetFreqFrame(hz))
	default:
		return nil
	}
}

// catSetFreqFrame builds a minimal Kenwood-style "set frequency" CAT frame
// (FAnnnnnnnnnnn;, 11 digits), the lowest common denominator raw-CAT rigs implement.
func catSetFreqFrame(hz float64) []byte {
	return []byte(fmt.Sprintf("FA%011d;", int64(hz)))
}

func (d *RealDevice) SampleRateHz() float64 { return d.cfg.SampleRateHz }
func (d *RealDevice) NofAntennas() int      { return d.cfg.NofAntennas }
