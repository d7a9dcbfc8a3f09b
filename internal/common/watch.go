package common

import "time"

// Watch is a tiny sleep helper that lets a call site read as intent
// ("sleep until caught up with simulation time") rather than a bare stdlib
// call. Nothing in this module calls it; the main thread and the
// virtual-space pacer use time.Sleep directly.
type Watch struct{}

func (Watch) SleepMilli(ms int64) {
	if ms <= 0 {
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

func (Watch) SleepMicro(us int64) {
	if us <= 0 {
		return
	}
	time.Sleep(time.Duration(us) * time.Microsecond)
}
