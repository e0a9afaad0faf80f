package nes

import (
	"image/color"
	"log"
)

// ╔═════════════════╤═══════╤═════════════════════════╤═══════════╗
// ║ Address Range   │ Size  │ Purpose                 │ Kind      ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x3F20 - 0x3FFF │ 224   │ Mirrors of $3F00-$3F1F  │           ║
// ║ 0x3F00 - 0x3F1F │ 32    │ Palette RAM             │  Palette  ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x3000 - 0x3EFF │ 3840  │ Mirrors of $2000-$2EFF  │           ║
// ║ 0x2000 - 0x2FFF │ 4096  │ Nametables + attributes │  VRAM     ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x0000 - 0x1FFF │ 8192  │ Pattern tables (CHR)    │  Cartridge║
// ╚═════════════════╧═══════╧═════════════════════════╧═══════════╝
var palette [64]color.RGBA = [64]color.RGBA{
	color.RGBA{0x7C, 0x7C, 0x7C, 0xFF}, color.RGBA{0x00, 0x00, 0xFC, 0xFF},
	color.RGBA{0x00, 0x00, 0xBC, 0xFF}, color.RGBA{0x44, 0x28, 0xBC, 0xFF},
	color.RGBA{0x94, 0x00, 0x84, 0xFF}, color.RGBA{0xA8, 0x00, 0x20, 0xFF},
	color.RGBA{0xA8, 0x10, 0x00, 0xFF}, color.RGBA{0x88, 0x14, 0x00, 0xFF},
	color.RGBA{0x50, 0x30, 0x00, 0xFF}, color.RGBA{0x00, 0x78, 0x00, 0xFF},
	color.RGBA{0x00, 0x68, 0x00, 0xFF}, color.RGBA{0x00, 0x58, 0x00, 0xFF},
	color.RGBA{0x00, 0x40, 0x58, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0xBC, 0xBC, 0xBC, 0xFF}, color.RGBA{0x00, 0x78, 0xF8, 0xFF},
	color.RGBA{0x00, 0x58, 0xF8, 0xFF}, color.RGBA{0x68, 0x44, 0xFC, 0xFF},
	color.RGBA{0xD8, 0x00, 0xCC, 0xFF}, color.RGBA{0xE4, 0x00, 0x58, 0xFF},
	color.RGBA{0xF8, 0x38, 0x00, 0xFF}, color.RGBA{0xE4, 0x5C, 0x10, 0xFF},
	color.RGBA{0xAC, 0x7C, 0x00, 0xFF}, color.RGBA{0x00, 0xB8, 0x00, 0xFF},
	color.RGBA{0x00, 0xA8, 0x00, 0xFF}, color.RGBA{0x00, 0xA8, 0x44, 0xFF},
	color.RGBA{0x00, 0x88, 0x88, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0xF8, 0xF8, 0xF8, 0xFF}, color.RGBA{0x3C, 0xBC, 0xFC, 0xFF},
	color.RGBA{0x68, 0x88, 0xFC, 0xFF}, color.RGBA{0x98, 0x78, 0xF8, 0xFF},
	color.RGBA{0xF8, 0x78, 0xF8, 0xFF}, color.RGBA{0xF8, 0x58, 0x98, 0xFF},
	color.RGBA{0xF8, 0x78, 0x58, 0xFF}, color.RGBA{0xFC, 0xA0, 0x44, 0xFF},
	color.RGBA{0xF8, 0xB8, 0x00, 0xFF}, color.RGBA{0xB8, 0xF8, 0x18, 0xFF},
	color.RGBA{0x58, 0xD8, 0x54, 0xFF}, color.RGBA{0x58, 0xF8, 0x98, 0xFF},
	color.RGBA{0x00, 0xE8, 0xD8, 0xFF}, color.RGBA{0x78, 0x78, 0x78, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
	color.RGBA{0xFC, 0xFC, 0xFC, 0xFF}, color.RGBA{0xA4, 0xE4, 0xFC, 0xFF},
	color.RGBA{0xB8, 0xB8, 0xF8, 0xFF}, color.RGBA{0xD8, 0xB8, 0xF8, 0xFF},
	color.RGBA{0xF8, 0xB8, 0xF8, 0xFF}, color.RGBA{0xF8, 0xA4, 0xC0, 0xFF},
	color.RGBA{0xF0, 0xD0, 0xB0, 0xFF}, color.RGBA{0xFC, 0xE0, 0xA8, 0xFF},
	color.RGBA{0xF8, 0xD8, 0x78, 0xFF}, color.RGBA{0xD8, 0xF8, 0x78, 0xFF},
	color.RGBA{0xB8, 0xF8, 0xB8, 0xFF}, color.RGBA{0xB8, 0xF8, 0xD8, 0xFF},
	color.RGBA{0x00, 0xFC, 0xFC, 0xFF}, color.RGBA{0xF8, 0xD8, 0xF8, 0xFF},
	color.RGBA{0x00, 0x00, 0x00, 0xFF}, color.RGBA{0x00, 0x00, 0x00, 0xFF},
}

const (
	ppuCtrlReg   uint16 = 0x2000
	ppuMaskReg   uint16 = 0x2001
	ppuStatusReg uint16 = 0x2002
	oamAddrReg   uint16 = 0x2003
	oamDataReg   uint16 = 0x2004
	ppuScrollReg uint16 = 0x2005
	ppuAddrReg   uint16 = 0x2006
	ppuDataReg   uint16 = 0x2007
	oamDmaAddr   uint16 = 0x4014
)

// VPHB SINN
// |||| ||||
// |||| ||++- Base nametable address (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
// |||| |+--- VRAM address increment per CPU read/write of PPUDATA
// |||| |     (0: add 1, going across; 1: add 32, going down)
// |||| +---- Sprite pattern table address for 8x8 sprites
// ||||       (0: $0000; 1: $1000; ignored in 8x16 mode)
// |||+------ Background pattern table address (0: $0000; 1: $1000)
// ||+------- Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
// |+-------- PPU master/slave select
// +--------- Generate an NMI at the start of vertical blank
type ppuCtrl byte

const (
	nametableAddress ppuCtrl = 3
	addressIncrement ppuCtrl = 1 << iota * 2
	spritePatternTableAddress
	backgroundPatternTableAddress
	spriteSize
	masterSlaveSelect
	generateNMI
)

// BGRs bMmG
// |||| ||||
// |||| |||+- Greyscale
// |||| ||+-- 1: Show background in leftmost 8 pixels of screen, 0: Hide
// |||| |+--- 1: Show sprites in leftmost 8 pixels of screen, 0: Hide
// |||| +---- 1: Show background
// |||+------ 1: Show sprites
// ||+------- Emphasize red
// |+-------- Emphasize green
// +--------- Emphasize blue
type ppuMask byte

const (
	greyscale ppuMask = 1 << iota
	backgroundClipping
	spriteClipping
	showBackground
	showSprites
	emphasizeRed
	emphasizeGreen
	emphasizeBlue
)

// VSO. ....
// |||+-++++- Least significant bits previously written into a PPU register
// ||+------- Sprite overflow (buggy on real hardware, see evaluateSprites)
// |+-------- Sprite 0 hit
// +--------- Vertical blank
type ppuStatus byte

const (
	spriteOverflow ppuStatus = 0x20 << iota
	sprite0Hit
	verticalBlank
)

type ppu struct {
	cartridge *cartridge

	ctrl           ppuCtrl
	mask           ppuMask
	status         ppuStatus
	oamAddress       byte
	oamData          [256]byte
	spritesInRange   byte
	secondaryOAMData [32]byte
	sprite0Next      bool

	readBuffer byte

	// nmiOccurred is the internal VBlank latch the NMI line is edge-
	// triggered from. It is set alongside the PPUSTATUS VBlank bit but,
	// unlike that bit, is also consulted (not just cleared) by a PPUCTRL
	// write: enabling generateNMI while nmiOccurred is still latched fires
	// NMI immediately instead of waiting for the next VBlank.
	nmiOccurred bool

	dot      int
	scanLine int
	frame    uint64

	paletteData [32]byte
	nametable0  [1024]byte
	nametable1  [1024]byte
	nametable2  [1024]byte
	nametable3  [1024]byte

	// Current/temporary VRAM address, fine X scroll, write-toggle and the
	// odd/even frame flag -- the v/t/x/w/f registers from the loopy scroll
	// model.
	v uint16
	t uint16
	x byte
	w byte
	f byte

	addressBus  uint16
	registerBus byte

	nametableByte byte
	attributeByte byte
	lowTileByte   byte
	highTileByte  byte

	lowTileRegister  uint16
	highTileRegister uint16
	lowAttrRegister  uint16
	highAttrRegister uint16

	buffer []byte
}

func newPpu() *ppu {
	return &ppu{
		buffer: make([]byte, 256*240*4),
	}
}

// setPixel writes an RGBA color into a width-pixels-wide byte buffer at
// (x, y), used by both the main frame buffer and the nametable/pattern
// table debug views.
func setPixel(buf []byte, width, x, y int, c color.RGBA) {
	i := (y*width + x) * 4
	buf[i] = c.R
	buf[i+1] = c.G
	buf[i+2] = c.B
	buf[i+3] = c.A
}

// spriteHeight is 8 in the default mode and 16 when the CTRL register's
// sprite-size bit is set, in which case the two tiles of a sprite come from
// whichever pattern table the low bit of its tile index selects, ignoring
// ctrl's own pattern-table bit.
func (p *ppu) spriteHeight() int {
	if p.ctrl&spriteSize != 0 {
		return 16
	}
	return 8
}

func (p *ppu) spritePatternAddress(tile byte, row uint16, flipV bool) uint16 {
	if p.ctrl&spriteSize != 0 {
		table := uint16(tile&1) * 0x1000
		index := uint16(tile &^ 1)
		if flipV {
			row = 15 - row
		}
		if row >= 8 {
			index++
			row -= 8
		}
		return table + index*16 + row
	}

	table := p.spriteTable()
	if flipV {
		row = 7 - row
	}
	return table + uint16(tile)*16 + row
}

func (p *ppu) spritePixel() (pixel, col, priority byte, spriteZero bool) {
	outputX := p.dot - 1
	if p.mask&showSprites == 0 || (outputX < 8 && p.mask&spriteClipping == 0) {
		return 0, 0, 0, false
	}

	height := p.spriteHeight()

	for i := byte(0); i < p.spritesInRange; i++ {
		y := p.secondaryOAMData[i*4]
		tile := p.secondaryOAMData[i*4+1]
		attr := p.secondaryOAMData[i*4+2]
		x := p.secondaryOAMData[i*4+3]

		pal := attr & 0x03 << 2
		prio := attr >> 5 & 0x01
		flipH := attr>>6&0x01 > 0
		flipV := attr>>7&0x01 > 0

		if outputX < int(x) || outputX > int(x)+7 {
			continue
		}

		row := uint16(p.scanLine - int(y))
		if int(row) >= height {
			continue
		}

		patternAddr := p.spritePatternAddress(tile, row, flipV)
		patternLo := p.read(patternAddr)
		patternHi := p.read(patternAddr + 8)

		patternX := byte(outputX) - x
		pixOffset := patternX
		if !flipH {
			pixOffset = 7 - patternX
		}

		pixLo := patternLo >> pixOffset & 0x01
		pixHi := patternHi >> pixOffset & 0x01 << 1

		pixel = pixLo | pixHi
		col = pixel | 0x10 | pal

		if pixel == 0 {
			continue
		}

		return pixel, col, prio, p.sprite0Next && i == 0
	}

	return 0, 0, 0, false
}

func (p *ppu) bgPixel() (pixel, col byte) {
	x := p.dot - 1

	if p.mask&showBackground == 0 || (x < 8 && p.mask&backgroundClipping == 0) {
		return 0, 0
	}

	bgPixelLo := byte(p.lowTileRegister >> (15 - p.x) & 0x1)
	bgPixelHi := byte(p.highTileRegister >> (15 - p.x) & 0x1)

	bgAttrLo := byte(p.lowAttrRegister >> (15 - p.x) & 0x1)
	bgAttrHi := byte(p.highAttrRegister >> (15 - p.x) & 0x1)
	attr := bgAttrHi<<1 | bgAttrLo

	pixel = bgPixelHi<<1 | bgPixelLo
	col = pixel | attr<<2
	return pixel, col
}

func (p *ppu) render() {
	bgPixel, bgColor := p.bgPixel()
	spPixel, spColor, priority, szero := p.spritePixel()

	// BG pixel	Sprite pixel	Priority	Output
	// 0		0				X			BG ($3F00)
	// 0		1-3				X			Sprite
	// 1-3		0				X			BG
	// 1-3		1-3				0			Sprite
	// 1-3		1-3				1			BG
	var col byte
	switch {
	case bgPixel == 0 && spPixel == 0:
		col = 0
	case bgPixel == 0 && spPixel != 0:
		col = spColor
	case bgPixel != 0 && spPixel == 0:
		col = bgColor
	case bgPixel != 0 && spPixel != 0 && priority == 0:
		if szero && p.status&sprite0Hit == 0 && p.dot-1 != 255 {
			p.status |= sprite0Hit
		}
		col = spColor
	default:
		if szero && p.status&sprite0Hit == 0 && p.dot-1 != 255 {
			p.status |= sprite0Hit
		}
		col = bgColor
	}

	paletteIdx := p.readPalette(uint16(col))
	setPixel(p.buffer, 256, p.dot-1, p.scanLine, palette[paletteIdx])
}

// tick advances the PPU by one dot. It is called in a batch of three per
// CPU cycle by stepPeripherals rather than being interleaved with
// individual bus accesses; see scheduler.go. The dot is broken into five
// independent concerns -- pixel pipeline, sprite evaluation, VBlank/NMI
// flags, counter advance, mapper IRQ -- each stepped in hardware order.
func (p *ppu) tick(cpu *cpu) {
	renderingEnabled := p.renderingEnabled()
	preRender := p.scanLine == 261
	visibleFrame := p.scanLine < 240

	p.updatePixelPipeline(renderingEnabled, preRender, visibleFrame)
	p.updateSpriteEvaluation(renderingEnabled, visibleFrame)
	p.updateVBlankFlags(cpu, preRender)
	p.advanceDot(renderingEnabled, preRender)
	p.pollMapperIRQ(cpu)
}

// updatePixelPipeline paints the current pixel, shifts the tile/attribute
// shift registers, runs the 8-phase background fetch that refills them two
// tiles ahead of output, and applies the coarse/fine scroll copies tied to
// specific dots.
func (p *ppu) updatePixelPipeline(renderingEnabled, preRender, visibleFrame bool) {
	visibleDot := p.dot > 0 && p.dot < 257
	invisibleDot := p.dot > 320 && p.dot < 341
	doOp := renderingEnabled && (preRender || visibleFrame)
	fetchDot := visibleDot || invisibleDot
	shiftDot := (p.dot > 0 && p.dot < 257) || (p.dot > 320 && p.dot < 337)

	if renderingEnabled && visibleFrame && visibleDot {
		p.render()
	}

	if doOp && shiftDot {
		p.shiftRegisters()
	}

	if doOp && fetchDot {
		p.fetchBackgroundByte()
	}

	switch {
	case doOp && p.dot == 256:
		p.incrementY()
	case doOp && p.dot == 257:
		p.copyX()
	case renderingEnabled && preRender && p.dot >= 280 && p.dot <= 304:
		p.copyY()
	}
}

func (p *ppu) shiftRegisters() {
	p.lowTileRegister <<= 1
	p.highTileRegister <<= 1
	p.lowAttrRegister <<= 1
	p.highAttrRegister <<= 1
}

// fetchBackgroundByte runs one phase of the 8-dot nametable/attribute/
// pattern fetch sequence, indexed by dot modulo 8.
func (p *ppu) fetchBackgroundByte() {
	switch (p.dot - 1) % 8 {
	case 0:
		p.addressBus = 0x2000 | (p.v & 0x0FFF)
	case 1:
		p.nametableByte = p.read(p.addressBus)
	case 2:
		p.addressBus = 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	case 3:
		g := p.v & 0x40 >> 5
		b := p.v & 0x02 >> 1
		shift := (g | b) << 1
		p.attributeByte = p.read(p.addressBus) >> shift & 0x03
	case 4:
		fineY := p.v >> 12 & 0x07
		p.addressBus = p.backgroundTable() + uint16(p.nametableByte)*16 + fineY
	case 5:
		p.lowTileByte = p.read(p.addressBus)
	case 6:
		fineY := p.v >> 12 & 0x07
		p.addressBus = p.backgroundTable() + uint16(p.nametableByte)*16 + fineY + 8
	case 7:
		p.highTileByte = p.read(p.addressBus)

		p.highTileRegister = p.highTileRegister&0xFF00 | uint16(p.highTileByte)
		p.lowTileRegister = p.lowTileRegister&0xFF00 | uint16(p.lowTileByte)

		p.highAttrRegister |= uint16(p.attributeByte >> 1 * 0xFF)
		p.lowAttrRegister |= uint16(p.attributeByte & 0x1 * 0xFF)

		p.incrementX()
	}
}

// updateSpriteEvaluation runs the secondary-OAM scan on visible scanlines
// while rendering is enabled, and otherwise resets the sprite-in-range
// state once per scanline so a disabled renderer can't leak stale sprite
// data into the next one.
func (p *ppu) updateSpriteEvaluation(renderingEnabled, visibleFrame bool) {
	if renderingEnabled && visibleFrame {
		p.evaluateSprites()
	} else if p.dot == 256 {
		p.spritesInRange = 0
		p.sprite0Next = false
	}
}

// updateVBlankFlags sets and clears PPUSTATUS's VBlank/overflow/sprite-0
// flags at the two dots hardware defines for them, latching nmiOccurred
// and raising the CPU's NMI line on VBlank entry if PPUCTRL currently
// requests it. The other NMI edge -- enabling generateNMI while
// nmiOccurred is already latched -- is handled in writePort's
// ppuCtrlReg case.
func (p *ppu) updateVBlankFlags(cpu *cpu, preRender bool) {
	switch {
	case p.scanLine == 241 && p.dot == 1:
		p.status |= verticalBlank
		p.nmiOccurred = true
		if p.ctrl&generateNMI > 0 {
			cpu.trigger(nmi)
		}
	case preRender && p.dot == 1:
		p.status &^= spriteOverflow
		p.status &^= sprite0Hit
		p.status &^= verticalBlank
		p.nmiOccurred = false
	}
}

// advanceDot moves the dot/scanline/frame counters forward. On odd frames,
// with rendering enabled, the idle cycle at the very end of the pre-render
// scanline is skipped entirely so the frame is one dot shorter -- the well
// known NTSC "skipped dot".
func (p *ppu) advanceDot(renderingEnabled, preRender bool) {
	switch {
	case preRender && p.dot == 339 && renderingEnabled && p.f == 1:
		p.dot = 0
		p.scanLine = 0
		p.frame++
		p.f ^= 1
	case p.dot == 340 && preRender:
		p.dot = 0
		p.scanLine = 0
		p.frame++
		p.f ^= 1
	case p.dot == 340:
		p.dot = 0
		p.scanLine++
	default:
		p.dot++
	}
}

func (p *ppu) pollMapperIRQ(cpu *cpu) {
	if p.cartridge != nil && p.cartridge.m.irqPending() {
		cpu.trigger(irq)
		p.cartridge.m.acknowledgeIRQ()
	}
}

// evaluateSprites runs the secondary-OAM fill that happens at dot 256 of
// every visible scanline, then the overflow scan that follows it.
func (p *ppu) evaluateSprites() {
	if p.dot != 256 {
		return
	}

	p.spritesInRange = 0
	p.sprite0Next = false

	resumeAt := p.fillSecondaryOAM()
	p.scanForOverflow(resumeAt)
}

// fillSecondaryOAM copies up to eight in-range sprites from primary OAM
// into the secondary buffer used to render the next scanline, returning
// the primary OAM index the overflow scan should resume from.
func (p *ppu) fillSecondaryOAM() int {
	height := p.spriteHeight()
	secAddress := 0

	n := 0
	for ; n < 64; n++ {
		y := p.oamData[n*4]
		row := p.scanLine - int(y)
		if row < 0 || row >= height {
			continue
		}

		if p.spritesInRange < 8 {
			copy(p.secondaryOAMData[secAddress*4:secAddress*4+4], p.oamData[n*4:n*4+4])
			secAddress++
		}
		if n == 0 {
			p.sprite0Next = true
		}
		p.spritesInRange++
		if p.spritesInRange == 8 {
			n++
			break
		}
	}
	return n
}

// scanForOverflow reproduces the real PPU's buggy sprite-overflow scan:
// once eight sprites have been found, hardware keeps reading OAM for a
// ninth but walks the byte offset instead of resetting to each candidate's
// Y byte, producing both false positives (overflow set for sprites that
// were never in range) and false negatives (missed ones that were) rather
// than the "intended" 8-sprites-per-line rule.
func (p *ppu) scanForOverflow(from int) {
	height := p.spriteHeight()
	m := 0
	for n := from; n < 64; n++ {
		y := p.oamData[n*4+m]
		row := p.scanLine - int(y)
		if row >= 0 && row < height {
			p.status |= spriteOverflow
			break
		}
		m = (m + 1) % 4
	}
}

func (p *ppu) readPort(address uint16, cpu *cpu) byte {
	if address < 0x4000 {
		address = (address-0x2000)%0x08 + 0x2000
	}

	switch address {
	case ppuStatusReg:
		result := p.registerBus&0x1F | byte(p.status&^verticalBlank)
		if p.nmiOccurred {
			result |= byte(verticalBlank)
		}
		p.status &^= verticalBlank
		p.nmiOccurred = false
		p.w = 0
		return result

	case oamDataReg:
		v := p.oamData[p.oamAddress]
		p.registerBus = v
		return v

	case ppuDataReg:
		var ret byte
		if p.v >= 0x3F00 && p.v <= 0x3FFF {
			ret = p.read(p.v)
			// Reading palette memory also refills the buffer from the
			// nametable mirror one page below, matching how PPUDATA
			// reads of $3F00-$3FFF are documented to behave.
			p.readBuffer = p.read(p.v - 0x1000)
		} else if p.v < 0x3F00 {
			ret = p.readBuffer
			p.readBuffer = p.read(p.v)
		}

		p.incrementV()

		p.registerBus = ret
		return ret
	}

	log.Printf("unexpected ppu port read: 0x%04X", address)
	return p.registerBus
}

func (p *ppu) writePort(address uint16, value byte, cpu *cpu) {
	if address < 0x4000 {
		address = (address-0x2000)%0x08 + 0x2000
	}
	p.registerBus = value

	switch address {
	case ppuCtrlReg:
		prevCtrl := p.ctrl
		p.ctrl = ppuCtrl(value)

		// NMI is edge-triggered on generateNMI&nmiOccurred, not just
		// sampled once per VBlank: enabling it while nmiOccurred is
		// already latched (VBlank entered, PPUSTATUS not yet read)
		// fires immediately instead of waiting for the next VBlank.
		if prevCtrl&generateNMI == 0 && p.ctrl&generateNMI != 0 && p.nmiOccurred {
			cpu.trigger(nmi)
		}

		d := uint16(value)
		p.t = p.t&0xF3FF | d&0x3<<10

	case ppuMaskReg:
		p.mask = ppuMask(value)

	case oamAddrReg:
		p.oamAddress = value

	case oamDataReg:
		if p.currentlyRendering() {
			return
		}
		p.oamData[p.oamAddress] = value
		p.oamAddress++

	case ppuScrollReg:
		d := uint16(value)
		if p.w == 0 {
			p.t = p.t&0xFFE0 | d>>3
			p.x = value & 0x07
			p.w = 1
		} else {
			fineY := d & 0x07 << 12
			coarseY := d & 0xF8 << 2
			p.t = p.t&0x8C1F | fineY | coarseY
			p.w = 0
		}

	case ppuAddrReg:
		d := uint16(value)
		if p.w == 0 {
			p.w = 1
			p.t = p.t&0xC0FF | d&0x3F<<8
			p.t &^= 0x4000
		} else {
			p.t = p.t&0xFF00 | d
			p.v = p.t
			p.w = 0
		}

	case ppuDataReg:
		p.write(p.v, value)
		p.incrementV()

	case oamDmaAddr:
		p.oamData[p.oamAddress] = value
		p.oamAddress++

	default:
		log.Printf("unexpected ppu port write: 0x%04X, 0x%02X", address, value)
	}
}

func (p *ppu) read(address uint16) byte {
	address %= 0x4000
	switch {
	case address < 0x2000:
		p.cartridge.m.watchA12(address)
		return p.cartridge.read(address)

	case address < 0x3F00:
		return p.readNametable(address)

	default:
		return p.readPalette(address)
	}
}

func (p *ppu) write(address uint16, value byte) {
	address %= 0x4000
	switch {
	case address < 0x2000:
		p.cartridge.m.watchA12(address)
		p.cartridge.write(address, value)

	case address < 0x3F00:
		p.writeNametable(address, value)

	default:
		p.writePalette(address, value)
	}
}

func (p *ppu) readPalette(address uint16) byte {
	switch address {
	case 0x3F10, 0x3F14, 0x3F18, 0x3F1C:
		address -= 0x10
	}
	return p.paletteData[address%32]
}

func (p *ppu) writePalette(address uint16, value byte) {
	switch address {
	case 0x3F10, 0x3F14, 0x3F18, 0x3F1C:
		address -= 0x10
	}
	p.paletteData[address%32] = value
}

// nametableFor resolves which of the four physical 1 KiB nametable arrays
// backs a given logical $2000-range address, according to the cartridge's
// mirroring mode. horizontal/vertical are the two common two-screen
// arrangements; singleScreenLower/singleScreenUpper pin every logical
// nametable to one physical screen (used by MMC1 in single-screen mode);
// fourScreenMirror gives each logical nametable its own physical screen,
// backed by onboard cartridge RAM on real hardware.
func (p *ppu) nametableFor(addr uint16) *[1024]byte {
	table := (addr - 0x2000) / 0x400 % 4

	switch p.cartridge.mirror() {
	case horizontal:
		if table == 0 || table == 1 {
			return &p.nametable0
		}
		return &p.nametable1
	case vertical:
		if table == 0 || table == 2 {
			return &p.nametable0
		}
		return &p.nametable1
	case singleScreenLower:
		return &p.nametable0
	case singleScreenUpper:
		return &p.nametable1
	default: // fourScreenMirror
		switch table {
		case 0:
			return &p.nametable0
		case 1:
			return &p.nametable1
		case 2:
			return &p.nametable2
		default:
			return &p.nametable3
		}
	}
}

func (p *ppu) readNametable(addr uint16) byte {
	return p.nametableFor(addr)[addr%0x400]
}

func (p *ppu) writeNametable(addr uint16, val byte) {
	p.nametableFor(addr)[addr%0x400] = val
}

func (p *ppu) incrementV() {
	if p.ctrl&addressIncrement > 0 {
		p.v += 32
	} else {
		p.v += 1
	}
}

// The coarse X component of v needs to be incremented when the next tile is
// reached. Bits 0-4 are incremented, with overflow toggling bit 10. This
// means bits 0-4 count from 0 to 31 across a single nametable, and bit 10
// selects the current nametable horizontally.
func (p *ppu) incrementX() {
	coarseX := p.v & 0x001F

	if coarseX == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
		return
	}

	p.v += 1
}

func (p *ppu) copyX() {
	p.v = p.v&^0x041F | p.t&0x041F
}

// If rendering is enabled, fine Y is incremented at dot 256 of each
// scanline, overflowing to coarse Y, and finally adjusted to wrap among the
// nametables vertically. Bits 12-14 are fine Y, bits 5-9 are coarse Y, and
// bit 11 selects the vertical nametable.
func (p *ppu) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}

	p.v &^= 0x7000

	coarseY := (p.v & 0x03E0) >> 5

	if coarseY == 29 {
		coarseY = 0
		p.v ^= 0x0800
	} else if coarseY == 31 {
		coarseY = 0
	} else {
		coarseY += 1
	}

	p.v = p.v&^0x03E0 | coarseY<<5
}

func (p *ppu) copyY() {
	p.v = p.v&^0x7BE0 | p.t&0x7BE0
}

func (p *ppu) backgroundTable() uint16 {
	if p.ctrl&backgroundPatternTableAddress > 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *ppu) spriteTable() uint16 {
	if p.ctrl&spritePatternTableAddress > 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *ppu) renderingEnabled() bool {
	return p.mask&showBackground > 0 || p.mask&showSprites > 0
}

func (p *ppu) currentlyRendering() bool {
	return p.renderingEnabled() && (p.scanLine < 240 || p.scanLine == 261)
}

// drawPatternTables renders both 128x128 pattern tables side by side into a
// 256x128 buffer, coloring every tile with the given palette index (0-3 for
// the background palettes, 4-7 for the sprite palettes) since a pattern
// table on its own carries no color information.
func (p *ppu) drawPatternTables(buf []byte, paletteSel byte) {
	base := uint16(paletteSel%8) * 4

	draw := func(table uint16, xoffset int) {
		for y := 0; y < 128; y++ {
			coarseY := y / 8
			fineY := uint16(y % 8)
			for tile := 0; tile < 16; tile++ {
				fineX := tile * 8
				patternNum := uint16(coarseY*16 + tile)

				patternLo := p.read(table + patternNum*16 + fineY)
				patternHi := p.read(table + patternNum*16 + fineY + 8)

				for pixel := 0; pixel < 8; pixel++ {
					pixello := patternLo & 0x80 >> 7
					pixelhi := patternHi & 0x80 >> 6
					patternLo <<= 1
					patternHi <<= 1
					col := pixello | pixelhi
					var paletteIndex byte
					if col != 0 {
						paletteIndex = p.paletteData[base+uint16(col)]
					} else {
						paletteIndex = p.paletteData[0]
					}
					setPixel(buf, 256, xoffset+fineX+pixel, y, palette[paletteIndex])
				}
			}
		}
	}

	draw(0x0000, 0)
	draw(0x1000, 128)
}

func (p *ppu) drawNametables(buf []byte) {
	draw := func(nametable, offsetX, offsetY uint16) {
		patternTable := p.backgroundTable()

		for y := uint16(0); y < 240; y++ {
			tileY := uint16(y / 8)

			patternY := uint16(y % 8)
			for tile := uint16(0); tile < 32; tile++ {
				nametableAddr := tileY*32 + tile
				tileX := tile * 8

				patternNum := uint16(p.read(nametable + nametableAddr))

				patternLo := p.read(patternTable + patternNum*16 + patternY)
				patternHi := p.read(patternTable + patternNum*16 + patternY + 8)

				attribute := p.read(nametable + 960 + (tileY/4)*8 + tile/4)

				top := tileY%4/2 == 0
				bot := tileY%4/2 == 1
				left := tile%4/2 == 0
				right := tile%4/2 == 1

				if top && left {
					attribute = attribute >> 0 & 0x03 << 2
				} else if top && right {
					attribute = attribute >> 2 & 0x03 << 2
				} else if bot && left {
					attribute = attribute >> 4 & 0x03 << 2
				} else if bot && right {
					attribute = attribute >> 6 & 0x03 << 2
				}

				for pixel := uint16(0); pixel < 8; pixel++ {
					pixello := patternLo & 0x80 >> 7
					pixelhi := patternHi & 0x80 >> 6
					patternLo <<= 1
					patternHi <<= 1
					col := p.paletteData[attribute|pixello|pixelhi]
					setPixel(buf, 512, int(offsetX+tileX+pixel), int(offsetY+y), palette[col])
				}
			}
		}
	}

	draw(0x2000, 0, 0)
	draw(0x2400, 256, 0)
	draw(0x2800, 0, 240)
	draw(0x2C00, 256, 240)
}
