package nes

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

var supportedMappers = []byte{0, 1, 2, 3, 4, 9}

type check func(*cartridge) error
type romfn func([]byte) ([]byte, check)

func TestLoadRom(t *testing.T) {
	empty := func([]byte) ([]byte, check) {
		return []byte{}, isNil
	}
	tooShort := func([]byte) ([]byte, check) {
		return []byte{'N', 'E', 'S', 0x1A, 0, 0, 0, 0, 0, 0}, isNil
	}
	invalidMagic1 := func([]byte) ([]byte, check) {
		return []byte{'N', 'O', 'S', 0x1A, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, isNil
	}
	invalidMagic2 := func([]byte) ([]byte, check) {
		return []byte{'N', 'E', 'S', ' ', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, isNil
	}

	tests := []struct {
		name    string
		rom     []romfn
		wantErr error
	}{
		{name: "empty", rom: []romfn{empty}, wantErr: ErrIO},
		{name: "too short", rom: []romfn{tooShort}, wantErr: ErrIO},
		{name: "invalid magic 1", rom: []romfn{invalidMagic1}, wantErr: ErrHeaderMalformed},
		{name: "invalid magic 2", rom: []romfn{invalidMagic2}, wantErr: ErrHeaderMalformed},
		{name: "horizontal mirroring", rom: []romfn{withHorizontal}},
		{name: "vertical mirroring", rom: []romfn{withVertical}},
		{name: "has ram", rom: []romfn{withRAM}},
		{name: "no ram", rom: []romfn{withoutRAM}},
		{name: "has trainer", rom: []romfn{withTrainer}},
		{name: "no trainer", rom: []romfn{withoutTrainer}},
		{name: "has four screen", rom: []romfn{withFourScreen}},
		{name: "no four screen", rom: []romfn{withoutFourScreen}},
		{name: "mapper 4", rom: []romfn{withMapper(4)}},
		{name: "unsupported mapper 42", rom: []romfn{withMapper(42)}, wantErr: ErrUnsupportedMapper},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := []byte{'N', 'E', 'S', 0x1a, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
			var checks []check

			for _, fn := range tt.rom {
				var c check
				rom, c = fn(rom)
				checks = append(checks, c)
			}

			got, err := loadRom(bytes.NewBuffer(rom))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("loadRom() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadRom() unexpected error = %v", err)
			}

			for _, fn := range checks {
				if fn == nil {
					continue
				}
				if err := fn(got); err != nil {
					t.Errorf("loadRom(): %s", err)
				}
			}
		})
	}
}

func TestLoadRom_SupportedMappers(t *testing.T) {
	for _, m := range supportedMappers {
		rom := []byte{'N', 'E', 'S', 0x1a, 2, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		rom, _ = withMapper(m)(rom)

		got, err := loadRom(bytes.NewBuffer(rom))
		if err != nil {
			t.Errorf("TestLoadRom_SupportedMappers(%d) unexpected error = %v", m, err)
			continue
		}

		if got.mapperNum != m {
			t.Errorf("TestLoadRom_SupportedMappers(%d): wanted mapper %v, got %v", m, m, got.mapperNum)
		}
	}
}

func withHorizontal(rom []byte) ([]byte, check) {
	rom[6] = unset(rom[6], rc1MirrorModeVertical)
	return rom, hasMode(horizontal)
}

func withVertical(rom []byte) ([]byte, check) {
	rom[6] = set(rom[6], rc1MirrorModeVertical)
	return rom, hasMode(vertical)
}

func withRAM(rom []byte) ([]byte, check) {
	rom[6] = set(rom[6], rc1SaveRAM)
	return rom, hasRAM(true)
}

func withoutRAM(rom []byte) ([]byte, check) {
	rom[6] = unset(rom[6], rc1SaveRAM)
	return rom, hasRAM(false)
}

func withTrainer(rom []byte) ([]byte, check) {
	rom[6] = set(rom[6], rc1Trainer)
	rom = append(rom, make([]byte, trainerLen)...)
	return rom, hasTrainer(true)
}

func withoutTrainer(rom []byte) ([]byte, check) {
	rom[6] = unset(rom[6], rc1Trainer)
	return rom, hasTrainer(false)
}

func withFourScreen(rom []byte) ([]byte, check) {
	rom[6] = set(rom[6], rc1FourScreen)
	return rom, hasFourScreen(true)
}

func withoutFourScreen(rom []byte) ([]byte, check) {
	rom[6] = unset(rom[6], rc1FourScreen)
	return rom, hasFourScreen(false)
}

func withMapper(m byte) romfn {
	lo := m & 0x0F
	hi := m & 0xF0

	return func(rom []byte) ([]byte, check) {
		rom[6] = (rom[6] & 0x0F) | (lo << 4)
		rom[7] = (rom[7] & 0x0F) | hi
		return rom, hasMapper(m)
	}
}

func isNil(c *cartridge) error {
	if c != nil {
		return fmt.Errorf("isNil() expected cartridge to be nil, got %v", c)
	}
	return nil
}

func hasMode(v mirrorMode) check {
	return func(c *cartridge) error {
		if c.mirrorMode != v {
			return fmt.Errorf("hasMode() expected mirrorMode to be %v, got %v", v, c.mirrorMode)
		}
		return nil
	}
}

func hasRAM(v bool) check {
	return func(c *cartridge) error {
		if c.saveRAM != v {
			return fmt.Errorf("hasRAM() expected saveRAM to be %v, got %v", v, c.saveRAM)
		}
		return nil
	}
}

func hasTrainer(v bool) check {
	var want int
	if v {
		want = trainerLen
	}
	return func(c *cartridge) error {
		if len(c.trainer) != want {
			return fmt.Errorf("hasTrainer() expected len(trainer) to be %v, got %v", want, len(c.trainer))
		}
		return nil
	}
}

func hasFourScreen(v bool) check {
	return func(c *cartridge) error {
		if c.fourScreen != v {
			return fmt.Errorf("hasFourScreen() expected fourScreen to be %v, got %v", v, c.fourScreen)
		}
		return nil
	}
}

func hasMapper(v byte) check {
	return func(c *cartridge) error {
		if c.mapperNum != v {
			return fmt.Errorf("hasMapper() expected mapperNum to be %v, got %v", v, c.mapperNum)
		}
		return nil
	}
}

func set(v byte, mask byte) byte {
	return v | mask
}

func unset(v byte, mask byte) byte {
	return v &^ mask
}
