package nes

import "testing"

func newTestBus(ram ...byte) *sysBus {
	r := newRam()
	copy(r[:], ram)
	return &sysBus{ram: r}
}

func TestCPU_ADC(t *testing.T) {
	type args struct {
		a    byte
		addr uint16
		bus  *sysBus
	}
	type want struct {
		carry    bool
		overflow bool
		a        byte
	}
	tests := []struct {
		name string
		args args
		want want
	}{
		{
			name: "no unsigned carry or signed overflow",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0x10)},
			want: want{a: 0x60, carry: false, overflow: false},
		},
		{
			name: "no unsigned carry but signed overflow",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0x50)},
			want: want{a: 0xA0, carry: false, overflow: true},
		},
		{
			name: "no unsigned carry or signed overflow (negative)",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0x90)},
			want: want{a: 0xE0, carry: false, overflow: false},
		},
		{
			name: "unsigned carry, no signed overflow",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0xD0)},
			want: want{a: 0x20, carry: true, overflow: false},
		},
		{
			name: "unsigned carry and signed overflow",
			args: args{addr: 0, a: 0xD0, bus: newTestBus(0x90)},
			want: want{a: 0x60, carry: true, overflow: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCpu(nil, newPpu(), newApu(4096, 44100, nil))
			c.setPC(0)
			c.a = tt.args.a

			c.adc(tt.args.bus, immediate, tt.args.addr)
			gotCarry := c.p&carry > 0
			gotOverflow := c.p&overflow > 0
			if c.a != tt.want.a {
				t.Errorf("cpu.adc() got a = %x, want %x", c.a, tt.want.a)
			}
			if gotCarry != tt.want.carry {
				t.Errorf("cpu.adc() got carry %v, want %v", gotCarry, tt.want.carry)
			}
			if gotOverflow != tt.want.overflow {
				t.Errorf("cpu.adc() got overflow %v, want %v", gotOverflow, tt.want.overflow)
			}
		})
	}
}

func TestCPU_SBC(t *testing.T) {
	type args struct {
		a    byte
		addr uint16
		bus  *sysBus
	}
	type want struct {
		carry bool
		a     byte
	}
	tests := []struct {
		name string
		args args
		want want
	}{
		{
			name: "unsigned borrow, no signed overflow",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0xF0)},
			want: want{a: 0x60, carry: false},
		},
		{
			name: "no unsigned borrow or signed overflow",
			args: args{addr: 0, a: 0x50, bus: newTestBus(0x30)},
			want: want{a: 0x20, carry: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCpu(nil, newPpu(), newApu(4096, 44100, nil))
			c.setPC(0)
			c.a = tt.args.a
			c.p |= carry // SBC borrows from the complement of carry

			c.sbc(tt.args.bus, immediate, tt.args.addr)
			gotCarry := c.p&carry > 0
			if c.a != tt.want.a {
				t.Errorf("cpu.sbc() got a = %x, want %x", c.a, tt.want.a)
			}
			if gotCarry != tt.want.carry {
				t.Errorf("cpu.sbc() got carry %v, want %v", gotCarry, tt.want.carry)
			}
		})
	}
}

func TestCPU_ResolveAddress(t *testing.T) {
	tests := []struct {
		name        string
		mode        addressingMode
		x, y        byte
		bus         *sysBus
		wantAddress uint16
		wantPC      uint16
	}{
		{
			name:        "immediate",
			mode:        immediate,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0,
			wantPC:      1,
		},
		{
			name:        "zeroPage",
			mode:        zeroPage,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0x2A,
			wantPC:      1,
		},
		{
			name:        "absolute",
			mode:        absolute,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0x012A,
			wantPC:      2,
		},
		{
			name:        "indexedX",
			mode:        indexedX,
			x:           0x03,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0x012A + 0x03,
			wantPC:      2,
		},
		{
			name:        "indexedY",
			mode:        indexedY,
			y:           0x04,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0x012A + 0x04,
			wantPC:      2,
		},
		{
			name:        "zeroPageIndexedX",
			mode:        zeroPageIndexedX,
			x:           0x03,
			bus:         newTestBus(0x2A, 0x01),
			wantAddress: 0x2A + 0x03,
			wantPC:      1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCpu(nil, newPpu(), newApu(4096, 44100, nil))
			c.setPC(0)
			c.x, c.y = tt.x, tt.y

			_, gotAddress := c.resolveAddress(tt.bus, instruction{mode: tt.mode})
			if gotAddress != tt.wantAddress {
				t.Errorf("cpu.resolveAddress() gotAddress = %v, want %v", gotAddress, tt.wantAddress)
			}
			if c.pc != tt.wantPC {
				t.Errorf("cpu.resolveAddress() pc = %v, want %v", c.pc, tt.wantPC)
			}
		})
	}
}
