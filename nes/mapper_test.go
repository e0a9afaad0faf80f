package nes

import "testing"

func TestMapper0_FixedBanksAndCHRRAMFallback(t *testing.T) {
	prg := make([]byte, 0x4000) // 16 KiB: mirrored across both CPU windows
	prg[0] = 0xAA
	prg[0x3FFF] = 0xBB

	m := newMapper0(prg, nil, horizontal)
	if got := m.readPRG(0x8000); got != 0xAA {
		t.Errorf("readPRG(0x8000) = %#02x, want %#02x", got, 0xAA)
	}
	if got := m.readPRG(0xC000); got != 0xAA {
		t.Errorf("readPRG(0xC000) = %#02x, want %#02x (16 KiB mirror)", got, 0xAA)
	}
	if got := m.readPRG(0xFFFF); got != 0xBB {
		t.Errorf("readPRG(0xFFFF) = %#02x, want %#02x", got, 0xBB)
	}

	// No CHR-ROM: the cartridge fell back to 8 KiB of writable CHR-RAM
	// before even constructing the mapper in loadRom, so newMapper0
	// only ever sees a non-nil chr slice in practice; exercise it the
	// same way here.
	chr := make([]byte, 8192)
	m2 := newMapper0(prg, chr, horizontal)
	m2.writeCHR(0x0000, 0x42)
	if got := m2.readCHR(0x0000); got != 0x42 {
		t.Errorf("readCHR(0x0000) = %#02x, want %#02x", got, 0x42)
	}
}

func TestMapper2_BankSwitchAndFixedLastBank(t *testing.T) {
	prg := make([]byte, 0x4000*4) // 4 banks
	for i := 0; i < 4; i++ {
		prg[i*0x4000] = byte(i)
	}
	prg[3*0x4000+0x3FFF] = 0xEE

	m := newMapper2(prg, nil, horizontal)

	// $C000-$FFFF is hardwired to the last bank regardless of selection.
	if got := m.readPRG(0xFFFF); got != 0xEE {
		t.Errorf("readPRG(0xFFFF) = %#02x, want %#02x (fixed last bank)", got, 0xEE)
	}

	m.writePRG(0x8000, 2)
	if got := m.readPRG(0x8000); got != 2 {
		t.Errorf("after bank select 2, readPRG(0x8000) = %#02x, want %#02x", got, 2)
	}

	m.writeCHR(0x0010, 0x77)
	if got := m.readCHR(0x0010); got != 0x77 {
		t.Errorf("CHR-RAM readback = %#02x, want %#02x", got, 0x77)
	}
}

func TestMapper3_CHRBankSelect(t *testing.T) {
	prg := make([]byte, 0x8000)
	chr := make([]byte, 0x2000*3)
	chr[2*0x2000] = 0x33

	m := newMapper3(prg, chr, horizontal)
	m.writePRG(0x8000, 2)

	if got := m.readCHR(0x0000); got != 0x33 {
		t.Errorf("readCHR(0x0000) after selecting bank 2 = %#02x, want %#02x", got, 0x33)
	}

	// writes to CHR-ROM are ignored
	m.writeCHR(0x0000, 0xFF)
	if got := m.readCHR(0x0000); got != 0x33 {
		t.Errorf("write to CHR-ROM mutated storage: readCHR(0x0000) = %#02x, want %#02x", got, 0x33)
	}
}

func mmc1Write(m *mapper1, addr uint16, value byte) {
	for i := 0; i < 5; i++ {
		m.writePRG(addr, (value>>i)&1)
	}
}

func TestMapper1_ShiftRegisterCommitProtocol(t *testing.T) {
	prg := make([]byte, 0x4000*4)
	m := newMapper1(prg, nil, horizontal)

	// Writing with bit 7 set resets the shift register and forces
	// prgMode into its post-reset default (3: switchable low, fixed high).
	m.writePRG(0x8000, 0x80)
	if m.prgMode() != 3 {
		t.Fatalf("prgMode after reset write = %d, want 3", m.prgMode())
	}

	// Five consecutive low-bit writes targeting $A000-$BFFF commit the
	// shifted value into chrBank0.
	mmc1Write(m, 0xA000, 0x05)
	if m.chrBank0 != 0x05 {
		t.Errorf("chrBank0 = %#02x, want %#02x", m.chrBank0, 0x05)
	}
}

func TestMapper1_PRGModeSwitching(t *testing.T) {
	prg := make([]byte, 0x4000*4)
	for i := 0; i < 4; i++ {
		prg[i*0x4000] = byte(i + 1)
	}

	m := newMapper1(prg, nil, horizontal)

	mmc1Write(m, 0x8000, 0x0C) // prgMode 3 (control bits 2-3 = 11), chrMode 0
	mmc1Write(m, 0xE000, 1)    // select PRG bank 1

	if got := m.readPRG(0x8000); got != 2 {
		t.Errorf("prgMode 3: readPRG(0x8000) = %#02x, want bank 1 (%#02x)", got, 2)
	}
	if got := m.readPRG(0xC000); got != 4 {
		t.Errorf("prgMode 3: readPRG(0xC000) = %#02x, want fixed last bank (%#02x)", got, 4)
	}
}

func TestMapper1_MirrorControlBits(t *testing.T) {
	prg := make([]byte, 0x4000*2)
	m := newMapper1(prg, nil, horizontal)

	for bits, want := range map[byte]mirrorMode{
		0: singleScreenLower,
		1: singleScreenUpper,
		2: vertical,
		3: horizontal,
	} {
		mmc1Write(m, 0x8000, 0x10|bits)
		if got := m.mirror(); got != want {
			t.Errorf("control bits %02b: mirror() = %v, want %v", bits, got, want)
		}
	}
}

func mmc3SelectRegister(m *mapper4, reg, prgMode, chrMode byte, value byte) {
	m.writePRG(0x8000, (chrMode<<7)|(prgMode<<6)|reg)
	m.writePRG(0x8001, value)
}

func TestMapper4_BankSelectAndPRGMode(t *testing.T) {
	prg := make([]byte, 0x2000*8)
	for i := 0; i < 8; i++ {
		prg[i*0x2000] = byte(i)
	}

	m := newMapper4(prg, nil, horizontal)

	// prgMode 0: R6 selects window 0, second-to-last bank fixed at window 2.
	mmc3SelectRegister(m, 6, 0, 0, 3)
	if got := m.readPRG(0x8000); got != 3 {
		t.Errorf("prgMode 0: readPRG(0x8000) = %#02x, want R6 bank (%#02x)", got, 3)
	}
	if got := m.readPRG(0xC000); got != 6 {
		t.Errorf("prgMode 0: readPRG(0xC000) = %#02x, want second-to-last bank (%#02x)", got, 6)
	}
	if got := m.readPRG(0xE000); got != 7 {
		t.Errorf("readPRG(0xE000) = %#02x, want last bank (%#02x)", got, 7)
	}

	// prgMode 1 swaps which window is fixed second-to-last: window 0
	// becomes the fixed one and R6 now governs window 2 instead.
	mmc3SelectRegister(m, 6, 1, 0, 3)
	if got := m.readPRG(0x8000); got != 6 {
		t.Errorf("prgMode 1: readPRG(0x8000) = %#02x, want second-to-last bank (%#02x)", got, 6)
	}
	if got := m.readPRG(0xC000); got != 3 {
		t.Errorf("prgMode 1: readPRG(0xC000) = %#02x, want R6 bank (%#02x)", got, 3)
	}
}

func TestMapper4_MirrorLatch(t *testing.T) {
	prg := make([]byte, 0x2000*8)
	m := newMapper4(prg, nil, horizontal)

	m.writePRG(0xA000, 0) // mirror bit 0 -> vertical
	if got := m.mirror(); got != vertical {
		t.Errorf("mirror() after writing 0 to $A000 = %v, want vertical", got)
	}
	m.writePRG(0xA000, 1) // mirror bit 1 -> horizontal
	if got := m.mirror(); got != horizontal {
		t.Errorf("mirror() after writing 1 to $A000 = %v, want horizontal", got)
	}
}

func TestMapper4_PRGRAMWriteProtect(t *testing.T) {
	m := newMapper4(make([]byte, 0x2000*8), nil, horizontal)

	m.writePRG(0xA001, 0x80) // ramEnabled=1, writeProtect=0
	m.writePRGRAM(0x6000, 0x42)
	if got := m.readPRGRAM(0x6000); got != 0x42 {
		t.Errorf("PRG-RAM readback = %#02x, want %#02x", got, 0x42)
	}

	m.writePRG(0xA001, 0xC0) // ramEnabled=1, writeProtect=1
	m.writePRGRAM(0x6000, 0xFF)
	if got := m.readPRGRAM(0x6000); got != 0x42 {
		t.Errorf("write-protected PRG-RAM was mutated: got %#02x, want unchanged %#02x", got, 0x42)
	}

	m.writePRG(0xA001, 0x00) // ramEnabled=0
	if got := m.readPRGRAM(0x6000); got != 0 {
		t.Errorf("disabled PRG-RAM read = %#02x, want %#02x (open bus)", got, 0)
	}
}

func TestMapper4_IRQCounterEdgeDetection(t *testing.T) {
	m := newMapper4(make([]byte, 0x2000*8), nil, horizontal)

	m.writePRG(0xC000, 4) // irqLatch = 4
	m.writePRG(0xC001, 0) // force reload on next clock
	m.writePRG(0xE001, 0) // irqEnabled = true

	// A12 must be low for at least mmc3A12MinLowCycles samples before a
	// rising edge is recognized; a bounce that doesn't hold low long
	// enough must not clock the counter.
	for i := 0; i < mmc3A12MinLowCycles-1; i++ {
		m.watchA12(0x0000)
	}
	m.watchA12(0x1000)
	if m.irqCounter != 0 {
		t.Fatalf("short low stretch should not have reloaded the counter, got %d", m.irqCounter)
	}

	for i := 0; i < mmc3A12MinLowCycles; i++ {
		m.watchA12(0x0000)
	}
	m.watchA12(0x1000)
	if m.irqCounter != 4 {
		t.Fatalf("irqCounter after reload = %d, want irqLatch (%d)", m.irqCounter, 4)
	}

	// Clock it down to zero across further qualifying rising edges.
	for n := 4; n > 0; n-- {
		for i := 0; i < mmc3A12MinLowCycles; i++ {
			m.watchA12(0x0000)
		}
		m.watchA12(0x1000)
	}
	if !m.irqPending() {
		t.Fatal("irqPending() = false after counter reached zero with irqEnabled")
	}

	m.acknowledgeIRQ()
	if m.irqPending() {
		t.Fatal("irqPending() still true after acknowledgeIRQ()")
	}
}

func TestMapper9_LatchTriggeredCHRSwitch(t *testing.T) {
	chr := make([]byte, 0x1000*4)
	for i := 0; i < 4; i++ {
		chr[i*0x1000] = byte(i + 1)
	}

	m := newMapper9(make([]byte, 0x2000*4), chr, horizontal)
	m.writePRG(0xB000, 0) // window 0, latch=$FD -> bank 0
	m.writePRG(0xC000, 1) // window 0, latch=$FE -> bank 1

	if got := m.readCHR(0x0000); got != 1 {
		t.Errorf("default latch ($FD): readCHR(0x0000) = %#02x, want bank 0 (%#02x)", got, 1)
	}

	// Fetching the last row of tile $FE (address 0x0FE8) flips the latch.
	m.readCHR(0x0FE8)
	if got := m.readCHR(0x0000); got != 2 {
		t.Errorf("after latching $FE: readCHR(0x0000) = %#02x, want bank 1 (%#02x)", got, 2)
	}

	// Fetching tile $FD flips it back.
	m.readCHR(0x0FD8)
	if got := m.readCHR(0x0000); got != 1 {
		t.Errorf("after latching $FD: readCHR(0x0000) = %#02x, want bank 0 (%#02x)", got, 1)
	}
}

func TestMapper9_FixedUpperPRGBanks(t *testing.T) {
	prg := make([]byte, 0x2000*4)
	for i := 0; i < 4; i++ {
		prg[i*0x2000] = byte(i + 1)
	}

	m := newMapper9(prg, nil, horizontal)
	if got := m.readPRG(0xA000); got != 2 {
		t.Errorf("readPRG(0xA000) = %#02x, want fixed bank 1 (%#02x)", got, 2)
	}
	if got := m.readPRG(0xE000); got != 4 {
		t.Errorf("readPRG(0xE000) = %#02x, want fixed last bank (%#02x)", got, 4)
	}

	m.writePRG(0xA000, 0)
	if got := m.readPRG(0x8000); got != 1 {
		t.Errorf("readPRG(0x8000) after selecting bank 0 = %#02x, want %#02x", got, 1)
	}
}
