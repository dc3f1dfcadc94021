package gui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
)

func TestKeyboardLookupMap(t *testing.T) {
	m := keyboardLookupMap(chip8.DefaultKeyboardLayout)

	assert.Len(t, m, chip8.KeyCount)
	assert.Equal(t, byte(0x0), m[ScanCode(rl.KeyX)])
	assert.Equal(t, byte(0x1), m[ScanCode(rl.KeyOne)])
	assert.Equal(t, byte(0xC), m[ScanCode(rl.KeyFour)])
	assert.Equal(t, byte(0xF), m[ScanCode(rl.KeyV)])
}

func TestScanCodeForUnsupportedRune(t *testing.T) {
	_, ok := scanCodeFor('-')
	assert.False(t, ok)
}
