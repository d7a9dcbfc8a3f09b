//go:build linux

package common

import (
	"golang.org/x/sys/unix"
)

// ThreadConfig is the {prio_offset, cpu_core} pair attached to every
// real-time thread (radio.json's per-thread configs).
type ThreadConfig struct {
	PrioOffset int
	CPUCore    int
}

// PinCurrentThread pins the calling OS thread to cfg.CPUCore and nudges its
// scheduling priority by cfg.PrioOffset. The caller must have already
// called runtime.LockOSThread() so the goroutine owns a dedicated OS
// thread. No driver or worker goroutine in this module calls it.
func PinCurrentThread(cfg ThreadConfig) error {
	if cfg.CPUCore >= 0 {
		var set unix.CPUSet
		set.Zero()
		set.Set(cfg.CPUCore)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			return err
		}
	}
	if cfg.PrioOffset != 0 {
		// Negative offsets raise priority (lower "nice" value); best-effort,
		// since unprivileged processes may not be able to go below 0.
		_ = unix.Setpriority(unix.PRIO_PROCESS, 0, cfg.PrioOffset)
	}
	return nil
}
