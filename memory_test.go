package chip8_test

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryHasFont(t *testing.T) {
	mem := chip8.NewMemory()

	// glyph 0
	assert.Equal(t, []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}, mem[0x050:0x055])
	// glyph F
	assert.Equal(t, []byte{0xF0, 0x80, 0xF0, 0x80, 0x80}, mem[0x09B:0x0A0])

	assert.Equal(t, make([]byte, 0x050), mem[:0x050])
	assert.Equal(t, make([]byte, chip8.MemorySize-0x0A0), mem[0x0A0:])
}

func TestMemoryBounds(t *testing.T) {
	mem := chip8.NewMemory()

	require.NoError(t, mem.Write(0xFFF, 0x12))
	b, err := mem.Read(0xFFF)
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	_, err = mem.Read(0x1000)
	assert.ErrorIs(t, err, chip8.ErrOutOfBounds)

	err = mem.Write(0x1234, 0)
	var oob chip8.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, uint16(0x1234), oob.Addr)
}

func TestLoadProgram(t *testing.T) {
	mem := chip8.NewMemory()

	require.NoError(t, mem.LoadProgram([]byte{1, 2, 3, 4}))
	assert.Equal(t, []byte{1, 2, 3, 4, 0}, mem[0x200:0x205])

	// a shorter program clears the rest of the previous one
	require.NoError(t, mem.LoadProgram([]byte{9}))
	assert.Equal(t, []byte{9, 0, 0, 0}, mem[0x200:0x204])

	require.NoError(t, mem.LoadProgram(make([]byte, chip8.MaxProgramSize)))
	assert.ErrorIs(t, mem.LoadProgram(make([]byte, chip8.MaxProgramSize+1)), chip8.ErrProgramTooLarge)
}

func TestMemoryClone(t *testing.T) {
	mem := chip8.NewMemory()
	clone := mem.Clone()
	assert.True(t, mem.IsEqual(clone))

	clone[0x300] = 1
	assert.False(t, mem.IsEqual(clone))
}

func TestGlyphAddress(t *testing.T) {
	for d := byte(0); d < 16; d++ {
		assert.Equal(t, uint16(0x050)+uint16(d)*5, chip8.GlyphAddress(d))
	}
	assert.Equal(t, chip8.GlyphAddress(0x3), chip8.GlyphAddress(0xF3))
}

func TestStack(t *testing.T) {
	s := chip8.Stack{}
	assert.True(t, s.Empty())

	_, err := s.Pop()
	assert.ErrorIs(t, err, chip8.ErrStackUnderflow)

	for i := 0; i < chip8.StackDepth; i++ {
		require.NoError(t, s.Push(uint16(0x200+2*i)))
	}
	assert.True(t, s.Full())
	assert.ErrorIs(t, s.Push(0x300), chip8.ErrStackOverflow)

	top, ok := s.Peek()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200+2*(chip8.StackDepth-1)), top)

	for i := chip8.StackDepth - 1; i >= 0; i-- {
		addr, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, uint16(0x200+2*i), addr)
	}
	assert.True(t, s.Empty())

	require.NoError(t, s.Push(0x222))
	s.Reset()
	assert.Equal(t, chip8.Stack{}, s)
}
