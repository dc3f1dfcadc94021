package chip8

import "unicode"

// KeyboardLayout maps every keypad key, by index, to the physical key
// that triggers it.
type KeyboardLayout [KeyCount]rune

// DefaultKeyboardLayout is the conventional QWERTY mapping of the keypad
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var DefaultKeyboardLayout = KeyboardLayout{
	'X', '1', '2', '3',
	'Q', 'W', 'E', 'A',
	'S', 'D', 'Z', 'C',
	'4', 'R', 'F', 'V',
}

// LookupMap returns the keypad key for each physical key of the layout.
// Letters are registered in both cases.
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, 2*KeyCount)
	for k, r := range layout {
		m[unicode.ToUpper(r)] = byte(k)
		m[unicode.ToLower(r)] = byte(k)
	}

	return m
}
