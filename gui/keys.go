package gui

import (
	"unicode"

	"github.com/guslan/chip8"
)

// ScanCode is a raylib key code
type ScanCode int32

// scanCodeFor returns the raylib key for a layout rune.
// raylib numbers letter and digit keys by their uppercase ASCII value.
func scanCodeFor(r rune) (ScanCode, bool) {
	r = unicode.ToUpper(r)
	if ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
		return ScanCode(r), true
	}

	return 0, false
}

func keyboardLookupMap(layout chip8.KeyboardLayout) map[ScanCode]byte {
	m := map[ScanCode]byte{}
	for r, k := range chip8.LookupMap(layout) {
		if sc, ok := scanCodeFor(r); ok {
			m[sc] = k
		}
	}

	return m
}
