package radio

import (
	"fmt"

	"github.com/pkg/term"

	"github.com/dectnrp/dectnrp-go/internal/common"
)

// RawSerial is a raw-CAT fallback path for rigs that speak a line protocol
// directly over a serial port rather than through a Hamlib-supported rig
// model. It is used when RealDeviceConfig.RigModel == 0 and RigPort != "".
type RawSerial struct {
	t *term.Term
}

// OpenRawSerial opens path at baud in raw mode: no line discipline, no
// local echo, reads and writes pass through byte-for-byte.
func OpenRawSerial(path string, baud int) (*RawSerial, error) {
	common.Assert(path != "", "radio: raw serial path must not be empty")
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("radio: open raw serial %s: %w", path, err)
	}
	return &RawSerial{t: t}, nil
}

// WriteCAT writes one CAT command frame and flushes it to the wire.
func (s *RawSerial) WriteCAT(frame []byte) error {
	if _, err := s.t.Write(frame); err != nil {
		return fmt.Errorf("radio: raw serial write: %w", err)
	}
	return s.t.Flush()
}

// ReadReply reads up to len(buf) bytes of the rig's reply.
func (s *RawSerial) ReadReply(buf []byte) (int, error) {
	return s.t.Read(buf)
}

func (s *RawSerial) Close() error {
	return s.t.Close()
}
