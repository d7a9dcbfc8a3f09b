package part3

import (
	"fmt"
	"strconv"
	"strings"
)

// RadioDeviceClass is the parsed form of a "u.b.N_TX.tier" string. tier
// selects Z: 'A' -> 2048, 'B' -> 6144.
type RadioDeviceClass struct {
	U     int
	B     int
	NTX   int
	Tier  byte
	Z     int
	Raw   string
}

// supportedU and supportedB fix the accepted u and b values; a class
// string outside them makes ParseRadioDeviceClass return an error, which
// GetMaximumPacketSizes reports as not found.
var supportedU = map[int]bool{1: true, 2: true, 4: true, 8: true}
var supportedB = map[int]bool{1: true, 2: true, 4: true, 8: true, 12: true, 16: true}

// ParseRadioDeviceClass parses "u.b.N_TX.tier", e.g. "1.1.1.A".
func ParseRadioDeviceClass(s string) (RadioDeviceClass, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return RadioDeviceClass{}, fmt.Errorf("part3: malformed radio device class %q", s)
	}
	u, err := strconv.Atoi(parts[0])
	if err != nil || !supportedU[u] {
		return RadioDeviceClass{}, fmt.Errorf("part3: unsupported u in %q", s)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil || !supportedB[b] {
		return RadioDeviceClass{}, fmt.Errorf("part3: unsupported b in %q", s)
	}
	ntx, err := strconv.Atoi(parts[2])
	if err != nil || ntx < 1 || ntx > 8 {
		return RadioDeviceClass{}, fmt.Errorf("part3: unsupported N_TX in %q", s)
	}
	if len(parts[3]) != 1 || (parts[3][0] != 'A' && parts[3][0] != 'B') {
		return RadioDeviceClass{}, fmt.Errorf("part3: unsupported tier in %q", s)
	}
	tier := parts[3][0]
	z := 2048
	if tier == 'B' {
		z = 6144
	}
	return RadioDeviceClass{U: u, B: b, NTX: ntx, Tier: tier, Z: z, Raw: s}, nil
}
