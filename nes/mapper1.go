package nes

// mapper1 implements iNES mapper 1 (MMC1), used by Metroid, The Legend of
// Zelda, and Mega Man 2 among many others. The CPU loads its registers one
// bit at a time through a 5-bit shift register: bit 7 set resets the
// register, bit 7 clear shifts bit 0 in; after five low-bit writes the
// accumulated value latches into whichever internal register the written
// address selects.
//
// Grounded on original_source/src/mmc1.c for the shift-register protocol
// and the PRG/CHR bank-mode semantics, cross-checked against
// andrewthecodertx-go-nes-emulator's pkg/cartridge/mapper1.go for the Go
// field layout this package's mapper files all follow.
type mapper1 struct {
	staticMapper

	prg, chr []byte
	chrIsRAM bool

	shift      byte
	shiftCount byte

	control byte // 0bCPPMM: chrMode (bit 4), prgMode (bits 3-2), mirror (bits 1-0) packed as MMC1 stores them
	chrBank0,
	chrBank1,
	prgBank byte
}

func newMapper1(prg, chr []byte, mode mirrorMode) *mapper1 {
	m := &mapper1{prg: prg, control: 0x0C}
	if len(chr) == 0 {
		m.chr = make([]byte, 8192)
		m.chrIsRAM = true
	} else {
		m.chr = chr
	}
	switch mode {
	case vertical:
		m.control = m.control&^3 | 2
	case horizontal:
		m.control = m.control&^3 | 3
	}
	return m
}

func (m *mapper1) prgBanks() byte { return byte(len(m.prg) / 0x4000) }
func (m *mapper1) chrBanks() byte {
	if m.chrIsRAM {
		return 2
	}
	return byte(len(m.chr) / 0x1000)
}

func (m *mapper1) prgMode() byte { return (m.control >> 2) & 3 }
func (m *mapper1) chrMode() byte { return (m.control >> 4) & 1 }

func (m *mapper1) readPRG(addr uint16) byte {
	var bank byte
	var base uint16
	switch {
	case addr < 0xC000:
		base = 0x8000
		switch m.prgMode() {
		case 0, 1:
			bank = m.prgBank &^ 1
		case 2:
			bank = 0
		case 3:
			bank = m.prgBank
		}
	default:
		base = 0xC000
		switch m.prgMode() {
		case 0, 1:
			bank = m.prgBank | 1
		case 2:
			bank = m.prgBank
		case 3:
			bank = m.prgBanks() - 1
		}
	}
	offset := uint32(bank)*0x4000 + uint32(addr-base)
	if int(offset) >= len(m.prg) {
		return 0
	}
	return m.prg[offset]
}

func (m *mapper1) writePRG(addr uint16, value byte) {
	if value&0x80 != 0 {
		m.shift = 0
		m.shiftCount = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (value & 1) << m.shiftCount
	m.shiftCount++

	if m.shiftCount < 5 {
		return
	}

	result := m.shift
	m.shift = 0
	m.shiftCount = 0

	switch {
	case addr < 0xA000:
		m.control = result
	case addr < 0xC000:
		m.chrBank0 = result
	case addr < 0xE000:
		m.chrBank1 = result
	default:
		m.prgBank = result & 0x0F
	}
}

func (m *mapper1) chrOffset(addr uint16) uint32 {
	if m.chrMode() == 0 {
		bank := m.chrBank0 &^ 1
		if addr >= 0x1000 {
			bank |= 1
		}
		return uint32(bank)*0x1000 + uint32(addr&0x0FFF)
	}
	if addr < 0x1000 {
		return uint32(m.chrBank0)*0x1000 + uint32(addr)
	}
	return uint32(m.chrBank1)*0x1000 + uint32(addr-0x1000)
}

func (m *mapper1) readCHR(addr uint16) byte {
	off := m.chrOffset(addr)
	if int(off) >= len(m.chr) {
		return 0
	}
	return m.chr[off]
}

func (m *mapper1) writeCHR(addr uint16, value byte) {
	if !m.chrIsRAM {
		return
	}
	off := m.chrOffset(addr)
	if int(off) < len(m.chr) {
		m.chr[off] = value
	}
}

func (m *mapper1) mirror() mirrorMode {
	switch m.control & 3 {
	case 0:
		return singleScreenLower
	case 1:
		return singleScreenUpper
	case 2:
		return vertical
	default:
		return horizontal
	}
}
