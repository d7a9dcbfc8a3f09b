package radio

import (
	"context"

	"github.com/jochenvg/go-udev"
)

// DiscoveredDevice is one USB device enumerated at startup that looks
// like it could back a RealDevice (sound card or rig control port).
type DiscoveredDevice struct {
	Syspath  string
	Vendor   string
	Product  string
	DevNode  string
}

// Discover enumerates attached USB devices before a real HwDevice is
// constructed, so cmd/dectnrp can report what's plugged in and pick a
// RigPort/sound-card index without the user having to know device paths
// up front.
func Discover() ([]DiscoveredDevice, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("usb"); err != nil {
		return nil, err
	}
	devices, err := e.Devices()
	if err != nil {
		return nil, err
	}

	out := make([]DiscoveredDevice, 0, len(devices))
	for _, dev := range devices {
		out = append(out, DiscoveredDevice{
			Syspath: dev.Syspath(),
			Vendor:  dev.PropertyValue("ID_VENDOR"),
			Product: dev.PropertyValue("ID_MODEL"),
			DevNode: dev.Devnode(),
		})
	}
	return out, nil
}

// WatchHotplug streams USB add/remove events until ctx is cancelled, for
// a long-running process that wants to notice a radio being plugged in
// after startup.
func WatchHotplug(ctx context.Context) (<-chan DiscoveredDevice, error) {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")
	if err := m.FilterAddMatchSubsystem("usb"); err != nil {
		return nil, err
	}

	devCh, _, err := m.DeviceChan(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan DiscoveredDevice)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case dev, ok := <-devCh:
				if !ok {
					return
				}
				select {
				case out <- DiscoveredDevice{
					Syspath: dev.Syspath(),
					Vendor:  dev.PropertyValue("ID_VENDOR"),
					Product: dev.PropertyValue("ID_MODEL"),
					DevNode: dev.Devnode(),
				}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
