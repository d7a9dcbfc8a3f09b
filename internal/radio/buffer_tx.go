package radio

import (
	"sync"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// BufferTx is one slot of the TX freelist, sized to the maximum packet
// length at the hardware sample rate.
type BufferTx struct {
	id int

	IQPerAntenna [][]complex64

	TxOrderID   uint64
	TxTime64    int64
	BusyWait    bool

	free bool
}

// ID is the buffer's stable slot index, stable across reuse.
func (b *BufferTx) ID() int { return b.id }

// BufferTxPool is a bounded freelist of BufferTx objects with the fill ->
// submit -> transmitted handshake.
type BufferTxPool struct {
	mu   sync.Mutex
	bufs []*BufferTx

	nextOrderID  uint64
	txEarliest64 int64
	turnaround64 int64
}

// NewBufferTxPool preallocates n buffers, each with capacity for
// maxSamples complex samples per antenna.
func NewBufferTxPool(n, nofAntennas, maxSamples int, turnaround64 int64) *BufferTxPool {
	common.Assert(n > 0, "radio: BufferTxPool needs at least one buffer")
	p := &BufferTxPool{
		bufs:         make([]*BufferTx, n),
		turnaround64: turnaround64,
	}
	for i := range p.bufs {
		iq := make([][]complex64, nofAntennas)
		for a := range iq {
			iq[a] = make([]complex64, maxSamples)
		}
		p.bufs[i] = &BufferTx{id: i, IQPerAntenna: iq, free: true}
	}
	return p
}

// GetBufferTxToFill returns the first free buffer reserved for the
// caller, or nil if none is free (caller logs and drops).
func (p *BufferTxPool) GetBufferTxToFill() *BufferTx {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.bufs {
		if b.free {
			b.free = false
			return b
		}
	}
	return nil
}

// SetAllBuffersAsTransmitted validates the filled buffer's ordering and
// deadline, then hands it to the driver: tx_order_id must be the next
// expected value (strict monotonic order) and tx_time_64 must be >=
// tx_earliest_64 + turnaround.
func (p *BufferTxPool) SetAllBuffersAsTransmitted(b *BufferTx) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if b.TxOrderID != p.nextOrderID {
		return false
	}
	if b.TxTime64 < p.txEarliest64+p.turnaround64 {
		return false
	}

	p.nextOrderID++
	p.txEarliest64 = b.TxTime64
	return true
}

// Release returns a buffer to the free list once hardware reports
// completion.
func (p *BufferTxPool) Release(b *BufferTx) {
	p.mu.Lock()
	b.free = true
	p.mu.Unlock()
}

// ScanDue calls fn for every reserved buffer whose TxTime64 has elapsed
// (<= now), under the pool's lock, so a driver can hand each one off and
// release it without racing GetBufferTxToFill.
func (p *BufferTxPool) ScanDue(now int64, fn func(*BufferTx)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.bufs {
		if b.free || b.TxTime64 > now {
			continue
		}
		fn(b)
		b.free = true
	}
}

// NextOrderID previews the order ID SetAllBuffersAsTransmitted will
// require next, for callers assembling a TxDescriptor ahead of time.
func (p *BufferTxPool) NextOrderID() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextOrderID
}
