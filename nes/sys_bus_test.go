package nes

import "testing"

func newTestBusFull() *sysBus {
	return &sysBus{
		ram:   newRam(),
		ppu:   newPpu(),
		apu:   newApu(4096, 44100, nil),
		ctrl1: &controller{},
		ctrl2: &controller{},
		cartridge: &cartridge{
			m:      &mapper0{mode: horizontal},
			prg:    make([]byte, prgMul),
			chr:    make([]byte, chrMul),
			prgRAM: make([]byte, prgRAMSize),
		},
	}
}

func TestSysBus_RAMMirroring(t *testing.T) {
	bus := newTestBusFull()

	bus.write(0x0001, 0x55)
	for _, addr := range []uint16{0x0001, 0x0801, 0x1001, 0x1801} {
		if got := bus.read(addr); got != 0x55 {
			t.Errorf("read(%#04x) = %#02x, want %#02x (2 KiB RAM mirror)", addr, got, 0x55)
		}
	}
}

func TestSysBus_PPURegisterMirroring(t *testing.T) {
	bus := newTestBusFull()

	bus.write(0x2000, 0x80) // enable NMI generation bit
	for _, addr := range []uint16{0x2000, 0x2008, 0x3FF8} {
		bus.write(addr, 0x80)
	}
	if bus.ppu.ctrl&generateNMI == 0 {
		t.Error("write through a mirrored PPU register address did not reach the PPU")
	}
}

func TestSysBus_ControllerStrobeSharedAcrossPorts(t *testing.T) {
	bus := newTestBusFull()

	bus.ctrl1.press(ButtonA)
	bus.ctrl2.press(ButtonB)

	bus.write(0x4016, 1)
	bus.write(0x4016, 0)

	if got := bus.read(0x4016) & 1; got != 1 {
		t.Errorf("controller 1 read = %d, want 1 (A pressed)", got)
	}
	bus.read(0x4017) // port 2 shifts out A (not pressed) before B
	if got := bus.read(0x4017) & 1; got != 1 {
		t.Errorf("controller 2 read = %d, want 1 (B pressed)", got)
	}
}

func TestSysBus_CartridgeRange(t *testing.T) {
	bus := newTestBusFull()
	bus.cartridge.prg[0] = 0xAB

	if got := bus.read(0x8000); got != 0xAB {
		t.Errorf("read(0x8000) = %#02x, want %#02x", got, 0xAB)
	}
}
