package simulation

import (
	"context"

	"github.com/dectnrp/dectnrp-go/internal/radio"
)

// RadioAdapter implements radio.RxSource and radio.TxSink over one
// endpoint's WaitReadable/WaitWritable calls, letting
// radio.VirtualDevice drive a simulated antenna stream without the
// radio package importing simulation (avoids an import cycle; radio
// only knows the RxSource/TxSink interfaces).
type RadioAdapter struct {
	vs  *VirtualSpace
	id  string
	ctx context.Context
}

// NewRadioAdapter registers id as both a TX and RX endpoint in vs and
// returns an adapter bound to ctx for shutdown propagation.
func NewRadioAdapter(ctx context.Context, vs *VirtualSpace, id string, nofAntennas int) *RadioAdapter {
	vs.RegisterTX(id, nofAntennas)
	vs.RegisterRX(id, nofAntennas)
	return &RadioAdapter{vs: vs, id: id, ctx: ctx}
}

// NextRxBlock satisfies radio.RxSource: blocks until every registered TX
// endpoint has submitted its slice for this round, then returns the
// composed (channel + noise) samples.
func (a *RadioAdapter) NextRxBlock(ts int64, n int) [][]complex64 {
	out, ok := a.vs.WaitReadable(a.ctx, a.id)
	if !ok {
		return nil
	}
	return out
}

// SubmitTx satisfies radio.TxSink: publishes the transmitted buffer's IQ
// into the fabric so other endpoints' RX sides can see it next round.
func (a *RadioAdapter) SubmitTx(b *radio.BufferTx, sampleRateHz float64) {
	a.vs.WaitWritable(a.ctx, a.id, b.IQPerAntenna)
}
