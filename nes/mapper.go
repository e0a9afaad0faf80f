package nes

import "fmt"

// mapper abstracts cartridge bank-switching hardware. The cartridge itself
// owns CHR/PRG-ROM storage and the 8 KiB PRG-RAM window at $6000-$7FFF; a
// mapper only decides which bank of that storage is visible at a given
// address, and whether writes into the cartridge's ROM address space
// should instead be treated as bank-select registers.
type mapper interface {
	readPRG(addr uint16) byte
	writePRG(addr uint16, value byte)
	readCHR(addr uint16) byte
	writeCHR(addr uint16, value byte)

	// mirror reports the current nametable mirroring mode. Most mappers
	// just return the mode fixed by the iNES header; MMC1 and MMC3 can
	// change it at runtime through their control registers.
	mirror() mirrorMode

	// irqPending and acknowledgeIRQ report and clear a mapper-generated
	// CPU /IRQ line. Only MMC3 drives this; every other mapper in this
	// package always reports false.
	irqPending() bool
	acknowledgeIRQ()

	// watchA12 is called with every address the PPU puts on its own bus
	// while rendering (nametable, attribute, and pattern-table fetches).
	// MMC3's scanline counter clocks off A12 (PPU address bit 12) rising
	// from low to high after having been low for a minimum stretch; every
	// other mapper ignores this entirely.
	watchA12(addr uint16)
}

// prgRAMBank is implemented by mappers that control their own PRG-RAM
// window at $6000-$7FFF instead of letting the cartridge serve it
// directly -- currently only MMC3, whose $A001 register can write-protect
// or disable that window entirely.
type prgRAMBank interface {
	readPRGRAM(addr uint16) byte
	writePRGRAM(addr uint16, value byte)
}

// newMapper builds the mapper implementation named by the iNES header's
// mapper number, seeded with the cartridge's PRG/CHR banks and the mirror
// mode the header requested (which mapper 0/2/3/9 treat as fixed, and
// mapper 1/4 use only as their post-reset default).
func newMapper(number byte, prg, chr []byte, mirror mirrorMode) (mapper, error) {
	switch number {
	case 0:
		return newMapper0(prg, chr, mirror), nil
	case 1:
		return newMapper1(prg, chr, mirror), nil
	case 2:
		return newMapper2(prg, chr, mirror), nil
	case 3:
		return newMapper3(prg, chr, mirror), nil
	case 4:
		return newMapper4(prg, chr, mirror), nil
	case 9:
		return newMapper9(prg, chr, mirror), nil
	default:
		return nil, fmt.Errorf("%w: mapper %d", ErrUnsupportedMapper, number)
	}
}

// staticMapper implements the irqPending/acknowledgeIRQ/watchA12 no-ops
// shared by every mapper in this package except MMC3 (mapper4).
type staticMapper struct{}

func (staticMapper) irqPending() bool    { return false }
func (staticMapper) acknowledgeIRQ()     {}
func (staticMapper) watchA12(uint16)     {}
