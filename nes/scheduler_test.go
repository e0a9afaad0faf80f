package nes

import "testing"

func TestStepPeripherals_RunsThreePPUDotsPerCPUCycle(t *testing.T) {
	p := newPpu()
	a := newApu(4096, 44100, nil)
	c := newCpu(nil, p, a)

	const cycles = 5
	stepPeripherals(c, nil, cycles)

	if got := p.dot; got != 3*cycles {
		t.Errorf("ppu.dot after %d CPU cycles = %d, want %d (3 dots/cycle)", cycles, got, 3*cycles)
	}
	if p.scanLine != 0 {
		t.Errorf("ppu.scanLine = %d, want 0 (no wraparound yet)", p.scanLine)
	}
}

func TestStepPeripherals_RunsOneAPUClockPerCPUCycle(t *testing.T) {
	p := newPpu()
	a := newApu(4096, 44100, nil)
	c := newCpu(nil, p, a)
	a.sequencerMode = 1 // 5-step mode so sequencerCounter doesn't hit the reset window used here

	const cycles = 10
	before := a.sequencerCounter
	stepPeripherals(c, nil, cycles)

	if got := a.sequencerCounter - before; got != cycles {
		t.Errorf("apu.sequencerCounter advanced by %d over %d CPU cycles, want %d (1 clock/cycle)", got, cycles, cycles)
	}
}

func TestStepPeripherals_PPUScanlineWraps(t *testing.T) {
	p := newPpu()
	a := newApu(4096, 44100, nil)
	c := newCpu(nil, p, a)

	// 341 dots make up one scanline; driving in over 114 CPU cycles
	// (342 dots) rolls the dot counter past 340 and advances the scanline.
	stepPeripherals(c, nil, 114)

	if p.scanLine == 0 {
		t.Error("ppu.scanLine did not advance after more than 341 dots were ticked")
	}
}
