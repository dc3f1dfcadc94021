package sdl

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func TestKeymap(t *testing.T) {
	m := keymap(chip8.DefaultKeyboardLayout)

	assert.Len(t, m, chip8.KeyCount)
	assert.Equal(t, byte(0x0), m[sdl.SCANCODE_X])
	assert.Equal(t, byte(0x1), m[sdl.SCANCODE_1])
	assert.Equal(t, byte(0xC), m[sdl.SCANCODE_4])
	assert.Equal(t, byte(0xD), m[sdl.SCANCODE_R])
	assert.Equal(t, byte(0xF), m[sdl.SCANCODE_V])
}

func TestScancode(t *testing.T) {
	code, ok := scancode('0')
	assert.True(t, ok)
	assert.Equal(t, sdl.Scancode(sdl.SCANCODE_0), code)

	_, ok = scancode('-')
	assert.False(t, ok)
}

func TestRenderMarksDirty(t *testing.T) {
	io := NewIO()

	var g chip8.Grid
	g[3][4] = true
	assert.NoError(t, io.Render(g))

	io.mu.Lock()
	defer io.mu.Unlock()
	assert.True(t, io.dirty)
	assert.Equal(t, g, io.screen)
}
