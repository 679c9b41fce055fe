package serial

import (
	"testing"

	"github.com/shonumi/gbe-plus-sub002/system/dmg/addr"
)

func TestLogSink_immediateTransferCompletesSynchronously(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true })

	s.Write(addr.SB, 'A')
	s.Write(addr.SC, 0x81) // internal clock, transfer start

	if !irqFired {
		t.Fatal("expected the serial interrupt to fire immediately")
	}
	if got := s.Read(addr.SB); got != 0xFF {
		t.Fatalf("SB = 0x%02X, want 0xFF (default incoming byte)", got)
	}
	if got := s.Read(addr.SC); got&0x80 != 0 {
		t.Fatalf("SC transfer-start bit should be cleared, got 0x%02X", got)
	}
}

func TestLogSink_fixedTimingDelaysCompletionBy4096Cycles(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true }, WithFixedTiming())

	s.Write(addr.SB, 'B')
	s.Write(addr.SC, 0x81)

	if irqFired {
		t.Fatal("fixed-timing transfer must not complete on the triggering write")
	}

	s.Tick(4095)
	if irqFired {
		t.Fatal("transfer completed one cycle too early")
	}
	if got := s.Read(addr.SB); got != 'B' {
		t.Fatalf("SB should still hold the outgoing byte mid-transfer, got 0x%02X", got)
	}

	s.Tick(1)
	if !irqFired {
		t.Fatal("transfer should have completed after 4096 cycles")
	}
	if got := s.Read(addr.SB); got != 0xFF {
		t.Fatalf("SB = 0x%02X, want 0xFF", got)
	}
}

func TestLogSink_TickIsNoOpWithoutAnActiveTransfer(t *testing.T) {
	irqFired := false
	s := NewLogSink(func() { irqFired = true }, WithFixedTiming())

	s.Tick(100000)
	if irqFired {
		t.Fatal("ticking with no transfer in progress must not fire the interrupt")
	}
}

func TestLogSink_ReadUnknownAddressReturnsOpenBus(t *testing.T) {
	s := NewLogSink(nil)
	if got := s.Read(0x1234); got != 0xFF {
		t.Fatalf("got 0x%02X, want 0xFF", got)
	}
}

func TestLogSink_ResetClearsTransferState(t *testing.T) {
	s := NewLogSink(nil, WithFixedTiming())
	s.Write(addr.SB, 'X')
	s.Write(addr.SC, 0x81)

	s.Reset()

	if got := s.Read(addr.SB); got != 0x00 {
		t.Fatalf("SB = 0x%02X, want 0x00", got)
	}
	if got := s.Read(addr.SC); got != 0x00 {
		t.Fatalf("SC = 0x%02X, want 0x00", got)
	}
}
