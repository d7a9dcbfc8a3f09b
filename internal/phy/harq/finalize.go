// Package harq implements the HARQ process pool: the concurrency
// primitive gating every PHY transmission and reception, enforcing rv
// progression and owning the turbo softbuffers.
package harq

// FinalizeTx selects what happens to a TX process when the MAC is done
// with the current pass:
//   - KeepRvAndKeepRunning: leave rv unchanged, process stays reserved.
//   - IncreaseRvAndKeepRunning: advance rv through the 0->2->3->1->0 cycle,
//     process stays reserved.
//   - ResetAndTerminate: clear all fields and softbuffers, release both
//     locks, return the process to the free pool.
type FinalizeTx int

const (
	KeepRvAndKeepRunning FinalizeTx = iota
	IncreaseRvAndKeepRunning
	ResetAndTerminate
)

// rvCycle is the fixed redundancy-version progression: 0 -> 2 -> 3 -> 1 ->
// 0 -> ...
var rvCycle = [4]int{0: 2, 2: 3, 3: 1, 1: 0}

// NextRv returns the rv that follows cur in the cycle.
func NextRv(cur int) int { return rvCycle[cur] }

// FinalizeRx selects the RX process's reset policy after one PDC decode
// attempt:
//   - AlwaysReset: reset regardless of outcome.
//   - NeverReset: never auto-reset (caller manages lifecycle explicitly).
//   - ResetOnCRCSuccess: reset only when the TB-CRC passed.
type FinalizeRx int

const (
	RxAlwaysReset FinalizeRx = iota
	RxNeverReset
	RxResetOnCRCSuccess
)
