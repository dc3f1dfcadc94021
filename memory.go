package chip8

import (
	"fmt"
	"strings"
)

const (
	MemorySize     = 4096
	StartOfProgram = 0x200
	FontBase       = 0x050
	MaxProgramSize = MemorySize - StartOfProgram

	// AddressMask keeps the 12 architecturally meaningful bits of PC and I.
	AddressMask uint16 = 0x0FFF

	glyphSize = 5
)

// Memory is the flat 4KB store of the machine.
// [0x000, 0x200) holds the font, [0x200, 0x1000) holds the program.
type Memory [MemorySize]byte

var font = [16 * glyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// NewMemory creates a zeroed memory of 4096 bytes with the font glyphs loaded
func NewMemory() *Memory {
	m := &Memory{}
	m.LoadFont()

	return m
}

func (mem *Memory) Clone() *Memory {
	m := &Memory{}
	copy(m[:], mem[:])

	return m
}

func (mem *Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

func (mem *Memory) IsEqual(other *Memory) bool {
	return *mem == *other
}

func (mem *Memory) Read(addr uint16) (byte, error) {
	if int(addr) >= MemorySize {
		return 0, OutOfBoundsError{Addr: addr}
	}

	return mem[addr], nil
}

func (mem *Memory) Write(addr uint16, b byte) error {
	if int(addr) >= MemorySize {
		return OutOfBoundsError{Addr: addr}
	}

	mem[addr] = b

	return nil
}

// LoadFont writes the 16 hexadecimal glyphs at FontBase
func (mem *Memory) LoadFont() {
	copy(mem[FontBase:], font[:])
}

// LoadProgram loads the program at the start-of-program address.
// Whatever a previous program left behind it is cleared.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, at most %d fit", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	n := copy(mem[StartOfProgram:], program)
	clear(mem[StartOfProgram+n:])

	return nil
}

// GlyphAddress is the address of the sprite for the hexadecimal digit d.
func GlyphAddress(d byte) uint16 {
	return FontBase + uint16(d&0x0F)*glyphSize
}
