package nes

// ╔═════════════════╤═══════╤═════════════════════════╤═══════════╗
// ║ Address Range   │ Size  │ Purpose                 │ Kind      ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0xC000 - 0xFFFF │ 16384 │ PRG-ROM UPPER BANK      │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤  PRG ROM  ║
// ║ 0x8000 - 0xBFFF │ 16384 │ PRG-ROM LOWER BANK      │           ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x6000 - 0x7FFF │ 8192  │ SRAM                    │   SRAM    ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x4020 - 0x5FFF │ 8160  │ EXPANSION ROM           │  EXP ROM  ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x4000 - 0x401F │ 32    │ APU / I/0 REGISTERS     │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤           ║
// ║ 0x2008 - 0x3FFF │ 8184  │ MIRRORS 0x2000 - 0x2007 │  I/O REG  ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤           ║
// ║ 0x2000 - 0x2007 │ 8     │ PPU REGISTERS           │           ║
// ╠═════════════════╪═══════╪═════════════════════════╪═══════════╣
// ║ 0x1800 - 0x1FFF │ 2048  │                         │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┤                         │           ║
// ║ 0x1000 - 0x17FF │ 2048  │ MIRRORS 0x0000 - 0x07FF │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┤                         │           ║
// ║ 0x0800 - 0x0FFF │ 2048  │                         │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤    RAM    ║
// ║ 0x0200 - 0x07FF │ 1536  │ RAM                     │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤           ║
// ║ 0x0100 - 0x01FF │ 256   │ STACK                   │           ║
// ╟╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌┼╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌╌┤           ║
// ║ 0x0000 - 0x00FF │ 256   │ ZERO PAGE               │           ║
// ╚═════════════════╧═══════╧═════════════════════════╧═══════════╝

// busReadHandler inspects a CPU read and optionally services it. It
// reports whether it consumed the read; a handler that returns
// consumed=false yields to the next handler in the chain.
type busReadHandler func(bus *sysBus, addr uint16) (v byte, consumed bool)

// busWriteHandler is the write-side counterpart of busReadHandler.
type busWriteHandler func(bus *sysBus, addr uint16, v byte) (consumed bool)

type sysBus struct {
	cartridge *cartridge
	ram       *ram
	cpu       *cpu
	apu       *apu
	ppu       *ppu
	ctrl1     *controller
	ctrl2     *controller

	readChain  []busReadHandler
	writeChain []busWriteHandler
}

// Registration order is significant: the first handler that consumes a
// read or write terminates the dispatch, so a range has to be listed
// ahead of any broader range it overlaps (e.g. the $4014/$4016/$4017
// single-address handlers run before the catch-all APU range).
func ramReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr >= 0x2000 {
		return 0, false
	}
	return bus.ram.read(addr), true
}

func ppuRegisterReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr < 0x2000 || addr >= 0x4000 {
		return 0, false
	}
	return bus.ppu.readPort(addr, bus.cpu), true
}

func apuStatusReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr != 0x4015 {
		return 0, false
	}
	return bus.apu.readPort(addr), true
}

func controller1ReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr != 0x4016 {
		return 0, false
	}
	return bus.ctrl1.read(), true
}

func controller2ReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr != 0x4017 {
		return 0, false
	}
	return bus.ctrl2.read(), true
}

func oamDMAReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr != 0x4014 {
		return 0, false
	}
	return bus.ppu.readPort(addr, bus.cpu), true
}

func unmappedIOReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr >= 0x4020 {
		return 0, false
	}
	return 0xFF, true // unmapped I/O register
}

func expansionROMReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if addr >= 0x6000 {
		return 0, false
	}
	return 0, true // expansion ROM, unused by any mapper in this package
}

func cartridgeReadHandler(bus *sysBus, addr uint16) (byte, bool) {
	if bus.cartridge == nil {
		return 0, true
	}
	return bus.cartridge.read(addr), true
}

func ramWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr >= 0x2000 {
		return false
	}
	bus.ram.write(addr, v)
	return true
}

func ppuRegisterWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr < 0x2000 || addr >= 0x4000 {
		return false
	}
	bus.ppu.writePort(addr, v, bus.cpu)
	return true
}

func oamDMAWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr != 0x4014 {
		return false
	}
	bus.ppu.writePort(addr, v, bus.cpu)
	return true
}

// controllerStrobeWriteHandler fans the shared $4016 strobe line out to
// both controller ports.
func controllerStrobeWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr != 0x4016 {
		return false
	}
	bus.ctrl1.write(v)
	bus.ctrl2.write(v)
	return true
}

func apuWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr >= 0x4014 && addr != 0x4015 && addr != 0x4017 {
		return false
	}
	bus.apu.writePort(addr, v)
	return true
}

func expansionROMWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if addr >= 0x6000 {
		return false
	}
	return true // expansion ROM, unused
}

func cartridgeWriteHandler(bus *sysBus, addr uint16, v byte) bool {
	if bus.cartridge == nil {
		return true
	}
	bus.cartridge.write(addr, v)
	return true
}

func (bus *sysBus) chains() ([]busReadHandler, []busWriteHandler) {
	if bus.readChain == nil {
		bus.readChain = []busReadHandler{
			ramReadHandler,
			ppuRegisterReadHandler,
			apuStatusReadHandler,
			controller1ReadHandler,
			controller2ReadHandler,
			oamDMAReadHandler,
			unmappedIOReadHandler,
			expansionROMReadHandler,
			cartridgeReadHandler,
		}
	}
	if bus.writeChain == nil {
		bus.writeChain = []busWriteHandler{
			ramWriteHandler,
			ppuRegisterWriteHandler,
			oamDMAWriteHandler,
			controllerStrobeWriteHandler,
			apuWriteHandler,
			expansionROMWriteHandler,
			cartridgeWriteHandler,
		}
	}
	return bus.readChain, bus.writeChain
}

func (bus *sysBus) read(address uint16) byte {
	readChain, _ := bus.chains()
	for _, handle := range readChain {
		if v, consumed := handle(bus, address); consumed {
			return v
		}
	}
	return 0
}

func (bus *sysBus) write(address uint16, v byte) {
	_, writeChain := bus.chains()
	for _, handle := range writeChain {
		if handle(bus, address, v) {
			return
		}
	}
}

func (bus *sysBus) readAddress(address uint16) uint16 {
	lo := bus.read(address)
	hi := bus.read(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (bus *sysBus) writeAddress(address uint16, v uint16) {
	lo := byte(v & 0x00FF)
	hi := byte(v & 0xFF00 >> 8)
	bus.write(address, lo)
	bus.write(address+1, hi)
}
