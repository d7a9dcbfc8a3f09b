// Package common holds cross-layer helpers shared by radio, phy and tpoint:
// assertions, logging, the layer/thread-group lifecycle, CPU affinity and
// small numeric helpers.
package common

import (
	"fmt"
	"runtime"
)

// EnableAssert mirrors the source's compile-time ENABLE_ASSERT knob. With it
// off, Assert returns without checking anything, so a violated invariant
// neither panics nor is reported; production builds leave it on.
var EnableAssert = true

// Assert panics with a tagged "FILE:LINE:FUNC | cond | msg" message when
// cond is false and assertions are enabled. This is for programmer errors
// and invariant violations only — never for expected runtime failures,
// which must be returned as typed results instead.
func Assert(cond bool, format string, args ...any) {
	if cond || !EnableAssert {
		return
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "?", 0
	}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	fname := "?"
	if fn != nil {
		fname = fn.Name()
	}
	panic(fmt.Sprintf("%s:%d:%s | assertion failed | %s", file, line, fname, fmt.Sprintf(format, args...)))
}

// AssertRecover, when deferred at the root of a goroutine, recovers a panic
// (such as a failed Assert) and hands the recovered value to onFail; it
// logs nothing itself and ignores name. No goroutine in this module defers
// it, so a failed Assert in a PHY worker or driver goroutine ends the
// process.
func AssertRecover(name string, onFail func(recovered any)) {
	if r := recover(); r != nil {
		if onFail != nil {
			onFail(r)
		}
	}
}
