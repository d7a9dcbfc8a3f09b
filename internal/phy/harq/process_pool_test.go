package harq

import (
	"testing"

	"github.com/dectnrp/dectnrp-go/internal/phy/fec"
	"github.com/dectnrp/dectnrp-go/internal/sections/part3"
)

func TestNextRvCycle(t *testing.T) {
	// mandated rv progression: 0 -> 2 -> 3 -> 1 -> 0.
	seq := []int{0, 2, 3, 1, 0}
	for i := 0; i < len(seq)-1; i++ {
		if got := NextRv(seq[i]); got != seq[i+1] {
			t.Fatalf("NextRv(%d) = %d, want %d", seq[i], got, seq[i+1])
		}
	}
}

func TestProcessPoolExhaustion(t *testing.T) {
	pool := NewProcessPool(2, 2)
	sizes := part3.PacketSizes{}

	p1 := pool.GetProcessTX(fec.PlcfType1, 1, sizes, KeepRvAndKeepRunning)
	p2 := pool.GetProcessTX(fec.PlcfType1, 2, sizes, KeepRvAndKeepRunning)
	if p1 == nil || p2 == nil {
		t.Fatalf("expected two free TX processes to be acquirable")
	}
	if p1.ID == p2.ID {
		t.Fatalf("acquired the same process twice: %d", p1.ID)
	}

	if p3 := pool.GetProcessTX(fec.PlcfType1, 3, sizes, KeepRvAndKeepRunning); p3 != nil {
		t.Fatalf("expected nil once the TX pool of size 2 is exhausted, got process %d", p3.ID)
	}

	p1.Finalize(ResetAndTerminate)
	p4 := pool.GetProcessTX(fec.PlcfType1, 4, sizes, KeepRvAndKeepRunning)
	if p4 == nil {
		t.Fatalf("expected a freed TX process to become acquirable again")
	}
	if p4.ID != p1.ID {
		t.Fatalf("expected the freed slot %d to be reused, got %d", p1.ID, p4.ID)
	}
}

func TestProcessTXFinalizeIncreaseRvRespectsCycle(t *testing.T) {
	pool := NewProcessPool(1, 0)
	sizes := part3.PacketSizes{}

	proc := pool.GetProcessTX(fec.PlcfType1, 1, sizes, KeepRvAndKeepRunning)
	if proc == nil {
		t.Fatalf("expected to acquire the sole TX process")
	}
	if proc.Rv != 0 {
		t.Fatalf("fresh TX process should start at rv=0, got %d", proc.Rv)
	}

	proc.Finalize(IncreaseRvAndKeepRunning)
	if proc.Rv != 2 {
		t.Fatalf("after one IncreaseRvAndKeepRunning, rv = %d, want 2", proc.Rv)
	}
	if proc.RvUnwrapped != 1 {
		t.Fatalf("RvUnwrapped = %d, want 1", proc.RvUnwrapped)
	}

	// Re-enter the same reserved process for another pass.
	again := pool.GetProcessTXRunning(proc.ID, IncreaseRvAndKeepRunning)
	if again == nil || again.ID != proc.ID {
		t.Fatalf("GetProcessTXRunning should re-enter the same reserved process")
	}
	again.Finalize(IncreaseRvAndKeepRunning)
	if proc.Rv != 3 {
		t.Fatalf("after two IncreaseRvAndKeepRunning, rv = %d, want 3", proc.Rv)
	}
}

func TestProcessRXFinalizeResetOnCRCSuccess(t *testing.T) {
	pool := NewProcessPool(0, 1)
	sizes := part3.PacketSizes{}

	proc := pool.GetProcessRX(fec.PlcfType1, 7, sizes, 0, RxResetOnCRCSuccess)
	if proc == nil {
		t.Fatalf("expected to acquire the sole RX process")
	}

	proc.Finalize(RxResetOnCRCSuccess, false)
	if again := pool.GetProcessRX(fec.PlcfType1, 8, sizes, 0, RxResetOnCRCSuccess); again != nil {
		t.Fatalf("CRC failure under ResetOnCRCSuccess must not free the process")
	}

	// Re-enter the still-reserved process for another decode pass.
	proc = pool.GetProcessRXRunning(proc.ID, 0, RxResetOnCRCSuccess)
	proc.Finalize(RxResetOnCRCSuccess, true)
	if again := pool.GetProcessRX(fec.PlcfType1, 8, sizes, 0, RxResetOnCRCSuccess); again == nil {
		t.Fatalf("CRC success under ResetOnCRCSuccess should free the process")
	}
}
