package nes

// mapper2 implements iNES mapper 2 (UxROM): a single bank-select register
// anywhere in $8000-$FFFF switches the 16 KiB bank visible at
// $8000-$BFFF, while $C000-$FFFF is hardwired to the last bank. CHR is
// always 8 KiB of RAM. Used by Mega Man, Castlevania, and Duck Tales.
//
// Grounded on andrewthecodertx-go-nes-emulator's pkg/cartridge/mapper2.go.
type mapper2 struct {
	staticMapper
	prg, chr []byte
	bank     byte
	mode     mirrorMode
}

func newMapper2(prg, chr []byte, mode mirrorMode) *mapper2 {
	return &mapper2{prg: prg, chr: make([]byte, 8192), mode: mode}
}

func (m *mapper2) banks() byte { return byte(len(m.prg) / 0x4000) }

func (m *mapper2) readPRG(addr uint16) byte {
	var bank byte
	var base uint16
	if addr < 0xC000 {
		bank, base = m.bank, 0x8000
	} else {
		bank, base = m.banks()-1, 0xC000
	}
	offset := uint32(bank)*0x4000 + uint32(addr-base)
	if int(offset) >= len(m.prg) {
		return 0
	}
	return m.prg[offset]
}

func (m *mapper2) writePRG(addr uint16, value byte) {
	m.bank = value % m.banks()
}

func (m *mapper2) readCHR(addr uint16) byte      { return m.chr[addr] }
func (m *mapper2) writeCHR(addr uint16, v byte)  { m.chr[addr] = v }
func (m *mapper2) mirror() mirrorMode            { return m.mode }
