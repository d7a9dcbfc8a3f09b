package agc

import "github.com/dectnrp/dectnrp-go/internal/common"

// RoundRobin applies at most Simultaneous pending per-antenna gain steps
// per call, cycling through antennas so a burst of requests across many
// antennas gets spread over several PHY slots instead of hitting the
// hardware all at once. Direct port of roundrobin_t.
type RoundRobin struct {
	nofAntennas int
	simultaneous int
	rIdx        int
}

// NewRoundRobin builds a scheduler over nofAntennas antennas, releasing at
// most simultaneous of them per Process call.
func NewRoundRobin(nofAntennas, simultaneous int) *RoundRobin {
	common.Assert(simultaneous > 0, "agc: roundrobin simultaneous must be > 0")
	if simultaneous > nofAntennas {
		simultaneous = nofAntennas
	}
	return &RoundRobin{nofAntennas: nofAntennas, simultaneous: simultaneous}
}

// Process admits the pending gain-step request for up to Simultaneous
// antennas (in round-robin order), zeroing out every other antenna's
// entry in the returned vector so only the admitted antennas are acted on
// this call.
func (r *RoundRobin) Process(pending AntVec) AntVec {
	ret := make(AntVec, r.nofAntennas)
	for i := 0; i < r.simultaneous; i++ {
		if pending[r.rIdx] != 0 {
			ret[r.rIdx] = pending[r.rIdx]
		}
		r.rIdx++
		if r.rIdx == r.nofAntennas {
			r.rIdx = 0
		}
	}
	return ret
}
