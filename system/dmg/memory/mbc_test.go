package memory

import "testing"

func markedROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = byte(0xA0 + b)
	}
	return rom
}

func TestMBC1_bankZeroWriteAliasesToBankOne(t *testing.T) {
	m := NewMBC1(markedROM(4), 0, false)

	m.Write(0x2000, 0x00) // selecting bank 0 must alias to bank 1
	if got := m.Read(0x4000); got != 0xA1 {
		t.Fatalf("bank 0 select: got 0x%02X, want 0xA1", got)
	}

	m.Write(0x2000, 0x02)
	if got := m.Read(0x4000); got != 0xA2 {
		t.Fatalf("bank 2 select: got 0x%02X, want 0xA2", got)
	}
}

func TestMBC1_ramBankingModeSelectsDistinctRAMBanks(t *testing.T) {
	m := NewMBC1(markedROM(2), 4, false)

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x6000, 0x01) // banking mode 1 (RAM banking)

	m.Write(0x4000, 0x02) // select RAM bank 2
	m.Write(0xA000, 0x55)

	m.Write(0x4000, 0x01) // switch to RAM bank 1
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("bank 1 should be untouched, got 0x%02X", got)
	}

	m.Write(0x4000, 0x02) // switch back
	if got := m.Read(0xA000); got != 0x55 {
		t.Fatalf("bank 2 should retain its write, got 0x%02X", got)
	}
}

func TestMBC1_ramDisabledReadsOpenBus(t *testing.T) {
	m := NewMBC1(markedROM(2), 1, false)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM should read 0xFF, got 0x%02X", got)
	}
}

func TestMBC2_internalRAMUpperNibbleReadsAsOnes(t *testing.T) {
	rom := markedROM(4)
	m := NewMBC2(rom)

	m.Write(0x0000, 0x0A) // bit8 clear -> RAM enable
	m.Write(0xA000, 0x07)

	if got := m.Read(0xA000); got != 0xF7 {
		t.Fatalf("got 0x%02X, want 0xF7 (upper nibble forced to 1s)", got)
	}
}

func TestMBC2_romBankSelectUsesAddressBit8(t *testing.T) {
	rom := markedROM(4)
	m := NewMBC2(rom)

	m.Write(0x2100, 0x03) // bit8 set -> ROM bank select
	if got := m.Read(0x4000); got != 0xA3 {
		t.Fatalf("got 0x%02X, want 0xA3", got)
	}
}

func TestMBC3_latchCopiesLiveRTCIntoLatchedSnapshot(t *testing.T) {
	m := NewMBC3(markedROM(2), 0, true)

	m.Write(0x0000, 0x0A) // enable RAM/RTC access
	m.Write(0x4000, 0x08) // select RTC seconds register
	m.Write(0xA000, 0x05) // write the live register

	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("unlatched read should still see the old snapshot (0), got 0x%02X", got)
	}

	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // 0->1 transition latches

	if got := m.Read(0xA000); got != 0x05 {
		t.Fatalf("latched read should see 0x05, got 0x%02X", got)
	}
}

func TestMBC5_rumbleCartMasksBit3OfRAMBankSelect(t *testing.T) {
	m := NewMBC5(markedROM(2), 8, true)

	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x08) // bit3 set, masked away for rumble carts -> bank 0
	m.Write(0xA000, 0x77)

	m.Write(0x4000, 0x00) // bank 0 again
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("bit3 should have been masked, banks 0x08 and 0x00 must alias, got 0x%02X", got)
	}
}

func TestMBC5_romBankSpansBothSelectRegisters(t *testing.T) {
	rom := markedROM(3)
	m := NewMBC5(rom, 0, false)

	m.Write(0x2000, 0x02) // low byte of the 9-bit bank number
	if got := m.Read(0x4000); got != 0xA2 {
		t.Fatalf("got 0x%02X, want 0xA2", got)
	}
}
