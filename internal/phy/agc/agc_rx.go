package agc

import "github.com/dectnrp/dectnrp-go/internal/common"

// RxController steers the local RX chain's analog/digital gain so the
// measured RX power converges on RxDBmTarget, sharing the TX side's
// quantize/limit/round-robin shape.
type RxController struct {
	Config

	RxDBmTarget float64

	rr *RoundRobin
}

// NewRxController validates RxDBmTarget against the controller's allowed
// range and wires a round-robin scheduler.
func NewRxController(cfg Config, rxDBmTarget float64, simultaneous int) *RxController {
	common.Assert(-80.0 <= rxDBmTarget, "agc: rx_dBm_target too small")
	common.Assert(rxDBmTarget <= -40.0, "agc: rx_dBm_target too large")
	return &RxController{
		Config:      cfg,
		RxDBmTarget: rxDBmTarget,
		rr:          NewRoundRobin(cfg.NofAntennas, simultaneous),
	}
}

// GetGainStepDB works out, per antenna, the gain change needed to move
// the measured RX power (rxPowerAnt0dBFS + 20*log10(rms)) to RxDBmTarget,
// then quantizes/limits/schedules it exactly as the TX side does.
func (r *RxController) GetGainStepDB(rxPowerAnt0dBFS, rmsMeasured AntVec) AntVec {
	raw := make(AntVec, r.NofAntennas)
	for i := 0; i < r.NofAntennas; i++ {
		if rmsMeasured[i] <= 0 {
			continue
		}
		measuredDBm := rxPowerAnt0dBFS[i] + common.MagToDB(rmsMeasured[i])
		raw[i] = r.RxDBmTarget - measuredDBm
	}
	return r.rr.Process(r.Config.quantizeAndLimitGainStepDB(raw))
}
