package nes

// mapper9 implements iNES mapper 9 (MMC2), used by Punch-Out!!. PRG is a
// single switchable 8 KiB bank at $8000-$9FFF with the last three 8 KiB
// banks fixed above it. CHR is split into two 4 KiB windows, each able to
// flip between two banks based on a one-bit latch that the PPU itself
// flips by simply fetching specific tiles: reading the last row of tile
// $FD or $FE in either CHR window latches that value for the window, so
// games can switch banks mid-frame purely by drawing a particular
// "switch" tile.
//
// Grounded on original_source/src/mmc2.c for the latch-trigger tile IDs
// and the fixed upper PRG banks.
type mapper9 struct {
	staticMapper

	prg, chr []byte
	prgBank  byte
	chrBank  [2][2]byte // chrBank[window][latch] -> bank number
	latch    [2]byte    // 0 = $FD selected, 1 = $FE selected

	mirrorBit byte
}

func newMapper9(prg, chr []byte, mode mirrorMode) *mapper9 {
	m := &mapper9{prg: prg, chr: chr}
	if mode == horizontal {
		m.mirrorBit = 1
	}
	return m
}

func (m *mapper9) prgBanks() uint32 { return uint32(len(m.prg) / 0x2000) }

func (m *mapper9) readPRG(addr uint16) byte {
	var bank uint32
	var base uint16
	switch {
	case addr < 0xA000:
		bank, base = uint32(m.prgBank), 0x8000
	case addr < 0xC000:
		bank, base = m.prgBanks()-3, 0xA000
	case addr < 0xE000:
		bank, base = m.prgBanks()-2, 0xC000
	default:
		bank, base = m.prgBanks()-1, 0xE000
	}
	off := bank*0x2000 + uint32(addr-base)
	if int(off) >= len(m.prg) {
		return 0
	}
	return m.prg[off]
}

func (m *mapper9) writePRG(addr uint16, value byte) {
	switch {
	case addr >= 0xA000 && addr < 0xB000:
		m.prgBank = value & 0x0F
	case addr >= 0xB000 && addr < 0xC000:
		m.chrBank[0][0] = value & 0x1F
	case addr >= 0xC000 && addr < 0xD000:
		m.chrBank[0][1] = value & 0x1F
	case addr >= 0xD000 && addr < 0xE000:
		m.chrBank[1][0] = value & 0x1F
	case addr >= 0xE000 && addr < 0xF000:
		m.chrBank[1][1] = value & 0x1F
	case addr >= 0xF000:
		m.mirrorBit = value & 1
	}
}

func (m *mapper9) latchWindow(window int, addr uint16) {
	lo := addr & 0x0FF8
	switch lo {
	case 0x0FD8:
		m.latch[window] = 0
	case 0x0FE8:
		m.latch[window] = 1
	}
}

func (m *mapper9) readCHR(addr uint16) byte {
	var window int
	var local uint16
	if addr < 0x1000 {
		window, local = 0, addr
	} else {
		window, local = 1, addr-0x1000
	}
	m.latchWindow(window, local)

	bank := m.chrBank[window][m.latch[window]]
	off := uint32(bank)*0x1000 + uint32(local)
	if int(off) >= len(m.chr) {
		return 0
	}
	return m.chr[off]
}

func (m *mapper9) writeCHR(addr uint16, value byte) {}

func (m *mapper9) mirror() mirrorMode {
	if m.mirrorBit == 0 {
		return vertical
	}
	return horizontal
}
