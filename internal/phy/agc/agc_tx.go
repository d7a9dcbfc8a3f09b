package agc

import "github.com/dectnrp/dectnrp-go/internal/common"

// TxController derives the TX gain step needed so that the opposite end's
// measured RX power converges on RxDBmTarget, grounded on agc_tx_t.
type TxController struct {
	Config

	// OFDMAmplitudeFactor is the waveform's backed-off digital amplitude
	// (0, 1], asserted within [OFDMAmplitudeFactorMinus20dB,
	// OFDMAmplitudeFactorMinus00dB].
	OFDMAmplitudeFactor float64

	// RxDBmTarget is the RX power, at the opposite end, this controller
	// steers toward. Asserted within [-80, -40] dBm per the source.
	RxDBmTarget float64

	rr *RoundRobin
}

// NewTxController validates parameters and wires a round-robin scheduler
// over Config.NofAntennas.
func NewTxController(cfg Config, ofdmAmplitudeFactor, rxDBmTarget float64, simultaneous int) *TxController {
	common.Assert(OFDMAmplitudeFactorMinus20dB <= ofdmAmplitudeFactor, "agc: ofdm amplitude factor too small")
	common.Assert(ofdmAmplitudeFactor <= OFDMAmplitudeFactorMinus00dB, "agc: ofdm amplitude factor too large")
	common.Assert(-80.0 <= rxDBmTarget, "agc: rx_dBm_target too small")
	common.Assert(rxDBmTarget <= -40.0, "agc: rx_dBm_target too large")
	return &TxController{
		Config:              cfg,
		OFDMAmplitudeFactor: ofdmAmplitudeFactor,
		RxDBmTarget:         rxDBmTarget,
		rr:                  NewRoundRobin(cfg.NofAntennas, simultaneous),
	}
}

// GetGainStepDB mirrors agc_tx_t::get_gain_step_dB: from the opposite
// site's reported TX power and our own measured RX power/RMS, work out
// what gain change at the opposite TX would have hit RxDBmTarget here,
// then quantize, limit, and round-robin-schedule the result.
func (t *TxController) GetGainStepDB(txDBmOpposite float64, txPowerAnt0dBFS, rxPowerAnt0dBFS, rmsMeasured AntVec) AntVec {
	rxPowerDBmMeasuredMax := -1e6
	for i := 0; i < t.NofAntennas; i++ {
		if rmsMeasured[i] > 0 {
			a := rxPowerAnt0dBFS[i] + common.MagToDB(rmsMeasured[i])
			if a > rxPowerDBmMeasuredMax {
				rxPowerDBmMeasuredMax = a
			}
		}
	}

	txDBmOppositeIdeal := txDBmOpposite + (t.RxDBmTarget - rxPowerDBmMeasuredMax)
	txDBm := txPowerAnt0dBFS.Max() + common.MagToDB(t.OFDMAmplitudeFactor)

	raw := make(AntVec, t.NofAntennas)
	for i := range raw {
		raw[i] = txDBmOppositeIdeal - txDBm
	}

	return t.rr.Process(t.Config.quantizeAndLimitGainStepDB(raw))
}
