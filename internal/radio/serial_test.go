package radio

import (
	"testing"
	"time"

	"github.com/creack/pty"
)

// TestRawSerialWriteCAT fabricates a PTY pair in place of real rig
// hardware: OpenRawSerial opens the slave's device path (a real tty node,
// the same way it would open /dev/ttyUSB0), and bytes written through
// WriteCAT are read back on the master side exactly as a physical CAT
// interface would see them on the wire.
func TestRawSerialWriteCAT(t *testing.T) {
	master, slave, err := pty.Open()
	if err != nil {
		t.Fatalf("pty.Open: %v", err)
	}
	defer master.Close()

	rs, err := OpenRawSerial(slave.Name(), 9600)
	if err != nil {
		t.Fatalf("OpenRawSerial: %v", err)
	}
	defer rs.Close()

	frame := catSetFreqFrame(433920000)

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(frame))
		n, _ := master.Read(buf)
		done <- buf[:n]
	}()

	if err := rs.WriteCAT(frame); err != nil {
		t.Fatalf("WriteCAT: %v", err)
	}

	select {
	case got := <-done:
		if string(got) != string(frame) {
			t.Fatalf("got %q, want %q", got, frame)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for CAT frame on master side")
	}
}

func TestCatSetFreqFrame(t *testing.T) {
	got := string(catSetFreqFrame(433920000))
	want := "FA00433920000;"
	if got != want {
		t.Fatalf("catSetFreqFrame(433920000) = %q, want %q", got, want)
	}
}
