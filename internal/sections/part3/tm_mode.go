package part3

// TMMode holds the transmission-mode parameters the PHY needs: spatial-
// stream count N_SS, antenna count N_TX and the DRS (pilot) cell density
// used to derive N_PDC_subc from N_PACKET_subc.
//
// Simplified relative to the full ETSI TS 103 636-3 Table 6.2.1-1: the
// twelve tm_mode_index values are grouped into single-antenna (0),
// transmit-diversity (1-3), closed-loop spatial multiplexing (4-7) and
// beamforming (8-11, of which 10 and 11 are also closed-loop) families. Documented as a simplification in
// DESIGN.md rather than a byte-exact standard table.
type TMMode struct {
	NSS         int // spatial streams (codewords sharing one TB)
	NTX         int // transmit antennas used
	ClosedLoop  bool
	Beamforming bool
	DRSRatio    int // 1 DRS cell per DRSRatio subcarrier-symbol cells
}

var tmModes = [12]TMMode{
	{NSS: 1, NTX: 1, ClosedLoop: false, Beamforming: false, DRSRatio: 8},
	{NSS: 1, NTX: 2, ClosedLoop: false, Beamforming: false, DRSRatio: 8},
	{NSS: 1, NTX: 4, ClosedLoop: false, Beamforming: false, DRSRatio: 8},
	{NSS: 1, NTX: 8, ClosedLoop: false, Beamforming: false, DRSRatio: 8},
	{NSS: 2, NTX: 2, ClosedLoop: true, Beamforming: false, DRSRatio: 6},
	{NSS: 2, NTX: 4, ClosedLoop: true, Beamforming: false, DRSRatio: 6},
	{NSS: 2, NTX: 8, ClosedLoop: true, Beamforming: false, DRSRatio: 6},
	{NSS: 4, NTX: 4, ClosedLoop: true, Beamforming: false, DRSRatio: 6},
	{NSS: 1, NTX: 2, ClosedLoop: false, Beamforming: true, DRSRatio: 8},
	{NSS: 1, NTX: 4, ClosedLoop: false, Beamforming: true, DRSRatio: 8},
	{NSS: 2, NTX: 4, ClosedLoop: true, Beamforming: true, DRSRatio: 6},
	{NSS: 4, NTX: 8, ClosedLoop: true, Beamforming: true, DRSRatio: 6},
}

// LookupTMMode returns (mode, true) for a valid index, or the zero value
// and false otherwise — an out-of-range index is an "undefined" packet
// size geometry, not a programmer error.
func LookupTMMode(idx int) (TMMode, bool) {
	if idx < 0 || idx >= len(tmModes) {
		return TMMode{}, false
	}
	return tmModes[idx], true
}
