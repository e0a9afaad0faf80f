package nes

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"
)

// resetCycleCount is the CPU cycle count at the end of the NES's internal
// reset sequence, before the first user-visible instruction executes.
// Matches the convention used by nestest-style execution logs so traces
// line up with reference logs from cycle 7 onward.
const resetCycleCount = 7

// Console wires a cartridge, CPU, PPU, APU and two controller ports
// together behind a shared sysBus and drives them one frame at a time.
type Console struct {
	cartridge   *cartridge
	ram         *ram
	cpu         *cpu
	apu         *apu
	ppu         *ppu
	controller1 *controller
	controller2 *controller

	bus *sysBus

	romName   string
	openFiles []*os.File
}

// NewConsole builds a console with no cartridge loaded. sampleRate sets
// the APU's output rate; pc, if non-zero, overrides the reset vector
// (used by test harnesses that want to start execution at a fixed
// address instead of whatever the ROM's reset vector points to).
// debugOut, if non-nil, receives a disassembly trace of every
// instruction the CPU executes.
func NewConsole(sampleRate float32, pc uint16, debugOut io.Writer) *Console {
	console := &Console{}

	makeFile := func(channel string) (io.WriteSeeker, error) {
		name := console.romName
		if name == "" {
			name = "rom"
		}

		dir, err := os.Getwd()
		if err != nil {
			return nil, err
		}

		pattern := strings.TrimSuffix(path.Base(name), path.Ext(name)) + "_" + channel + "_*.wav"
		f, err := ioutil.TempFile(dir, pattern)
		if err != nil {
			return nil, err
		}

		console.openFiles = append(console.openFiles, f)
		return f, nil
	}

	ram := newRam()
	ctrl1 := &controller{}
	ctrl2 := &controller{}

	ppu := newPpu()
	apu := newApu(4096, sampleRate, makeFile)
	cpu := newCpu(debugOut, ppu, apu)

	bus := &sysBus{
		ram:   ram,
		cpu:   cpu,
		apu:   apu,
		ppu:   ppu,
		ctrl1: ctrl1,
		ctrl2: ctrl2,
	}

	// The DMC channel stalls the CPU while it fetches a sample byte over
	// the bus; wiring that fetch here (rather than inside apu.go) keeps
	// the APU free of a direct sysBus/cpu dependency.
	apu.dmc.stallReader = func(addr uint16, cycles int) {
		apu.dmc.sampleBuffer = bus.read(addr)
		cpu.cycles += uint64(cycles)
	}

	if pc != 0 {
		cpu.setPC(pc)
	}
	cpu.cycles = resetCycleCount

	console.ram = ram
	console.cpu = cpu
	console.apu = apu
	console.ppu = ppu
	console.controller1 = ctrl1
	console.controller2 = ctrl2
	console.bus = bus

	return console
}

// Empty reports whether a cartridge has been loaded yet.
func (c *Console) Empty() bool {
	return c.cartridge == nil
}

func (c *Console) load(cartridge *cartridge) {
	first := c.cartridge == nil
	c.cartridge = cartridge
	c.bus.cartridge = cartridge
	c.ppu.cartridge = cartridge

	if first {
		c.cpu.init(c.bus)
		return
	}

	c.Reset()
}

// LoadPath opens and parses the iNES image at p, swapping it in as the
// console's active cartridge. Loading a second ROM resets the console
// instead of reinitializing the CPU from scratch.
func (c *Console) LoadPath(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("%w: unable to open rom: %s", ErrIO, err)
	}
	defer f.Close()

	cart, err := loadRom(f)
	if err != nil {
		return err
	}

	c.romName = path.Base(p)
	c.load(cart)
	return nil
}

// LoadRom parses an iNES image already open in memory, e.g. one embedded
// via cmd/embed or supplied by a test. See LoadPath for reload semantics.
func (c *Console) LoadRom(rom io.Reader) error {
	cart, err := loadRom(rom)
	if err != nil {
		return err
	}

	c.load(cart)
	return nil
}

func (c *Console) StartRecording() error {
	return c.apu.mixer.startRecording()
}

func (c *Console) PauseRecording() {
	c.apu.mixer.pauseRecording()
}

func (c *Console) UnpauseRecording() {
	c.apu.mixer.unpauseRecording()
}

func (c *Console) StopRecording() error {
	return c.apu.mixer.stopRecording()
}

// Close stops any in-progress recording and releases the WAV files it
// opened on disk.
func (c *Console) Close() error {
	if err := c.StopRecording(); err != nil {
		return err
	}

	var err error
	for _, f := range c.openFiles {
		err = f.Close()
	}

	return err
}

func (c *Console) Reset() {
	c.cpu.reset(c.bus)
	c.apu.reset()
}

// StepFrame runs the CPU, with the PPU and APU following in its wake via
// the scheduler, until the PPU reports a completed frame. A no-op
// without a cartridge loaded.
func (c *Console) StepFrame() {
	if c.Empty() {
		return
	}

	frame := c.ppu.frame
	for frame == c.ppu.frame {
		c.cpu.execute(c.bus)
	}
}

func (c *Console) Press(ctrl int, button Button) {
	switch ctrl {
	case 0:
		c.controller1.press(button)
	case 1:
		c.controller2.press(button)
	}
}

func (c *Console) Release(ctrl int, button Button) {
	switch ctrl {
	case 0:
		c.controller1.release(button)
	case 1:
		c.controller2.release(button)
	}
}

// Buffer returns the PPU's current frame, packed RGBA, ready to blit.
func (c *Console) Buffer() []byte {
	return c.ppu.buffer
}

// AudioChannel returns the stream of mixed, filtered audio samples.
func (c *Console) AudioChannel() <-chan float32 {
	return c.apu.channel()
}

func (c *Console) DrawNametables(buf []byte) {
	c.ppu.drawNametables(buf)
}

func (c *Console) DrawPatternTables(buf []byte, palette byte) {
	c.ppu.drawPatternTables(buf, palette)
}

// Read and Write expose the CPU's view of the address space, mainly for
// tests and debug tooling that want to peek/poke memory directly.
func (c *Console) Read(addr uint16) byte {
	return c.bus.read(addr)
}

func (c *Console) Write(addr uint16, v byte) {
	c.bus.write(addr, v)
}
