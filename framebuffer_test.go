package chip8_test

import (
	"strings"
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
)

func TestTogglePixelWraps(t *testing.T) {
	fb := chip8.Framebuffer{}

	assert.False(t, fb.TogglePixel(64, 32))
	assert.True(t, fb.IsSet(0, 0))
	assert.True(t, fb.TogglePixel(0, 0))
	assert.False(t, fb.IsSet(0, 0))

	fb.TogglePixel(-1, -1)
	assert.True(t, fb.IsSet(63, 31))
}

func TestDrawSpriteCollision(t *testing.T) {
	fb := chip8.Framebuffer{}

	assert.False(t, fb.DrawSprite(0, 0, []byte{0b10100000}))
	assert.True(t, fb.IsSet(0, 0))
	assert.False(t, fb.IsSet(1, 0))
	assert.True(t, fb.IsSet(2, 0))

	// lights (1, 0) only: no lit pixel is erased
	assert.False(t, fb.DrawSprite(0, 0, []byte{0b01000000}))
	// erases (2, 0)
	assert.True(t, fb.DrawSprite(2, 0, []byte{0b10000000}))
	assert.False(t, fb.IsSet(2, 0))
}

func TestFramebufferDirty(t *testing.T) {
	fb := chip8.Framebuffer{}
	assert.False(t, fb.Dirty())

	fb.DrawSprite(10, 10, []byte{0xFF})
	assert.True(t, fb.Dirty())

	snap := fb.Snapshot()
	fb.Clear()
	assert.True(t, snap[10][17])
	assert.Equal(t, chip8.Grid{}, fb.Snapshot())
}

func TestGridPacking(t *testing.T) {
	var g chip8.Grid
	g[0][0] = true
	g[0][9] = true
	g[31][63] = true

	packed := g.Pack()
	assert.Len(t, packed, 256)
	assert.Equal(t, byte(0x80), packed[0])
	assert.Equal(t, byte(0x40), packed[1])
	assert.Equal(t, byte(0x01), packed[255])

	assert.Equal(t, g, chip8.Unpack(packed))
}

func TestGridString(t *testing.T) {
	var g chip8.Grid
	g[1][2] = true

	lines := strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
	assert.Len(t, lines, chip8.ScreenHeight)
	assert.Equal(t, "..#"+strings.Repeat(".", chip8.ScreenWidth-3), lines[1])
}
