package nes

// stepPeripherals catches the PPU and APU up to the CPU after a whole
// instruction has executed, rather than ticking them in lockstep with
// every individual bus access the instruction happens to make. The PPU
// runs at 3 dots per CPU cycle and the APU at 1 clock per CPU cycle, so a
// single instruction that took n cycles yields exactly 3n PPU ticks and n
// APU clocks, delivered in that batch once the instruction's side effects
// (registers, flags, memory, DMA) have already landed.
//
// This only changes when the peripherals observe state, not what they
// observe: PPU register reads/writes performed mid-instruction (through
// $2000-$3FFF) still happen against whatever PPU state resulted from the
// last completed batch, which matches how real software polls PPUSTATUS
// and the NES's own dot-by-dot timing would be invisible to code running
// at instruction granularity anyway.
func stepPeripherals(c *cpu, bus *sysBus, cycles uint64) {
	for i := uint64(0); i < cycles; i++ {
		c.ppu.tick(c)
		c.ppu.tick(c)
		c.ppu.tick(c)
		c.apu.clock(c)
	}
}
