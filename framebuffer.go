package chip8

import "strings"

const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

// Grid is the pixel state of the screen, indexed [y][x]
type Grid [ScreenHeight][ScreenWidth]bool

// Pack returns the grid as 256 bytes, one bit per pixel, rows top to bottom
// and the most significant bit leftmost.
func (g Grid) Pack() []byte {
	buf := make([]byte, ScreenWidth*ScreenHeight/8)
	for y := range g {
		for x, on := range g[y] {
			if on {
				t := y*ScreenWidth + x
				buf[t/8] |= 0x80 >> (t % 8)
			}
		}
	}

	return buf
}

// Unpack is the inverse of Pack. Missing bytes leave pixels unset.
func Unpack(packed []byte) Grid {
	var g Grid
	for t := 0; t < ScreenWidth*ScreenHeight && t/8 < len(packed); t++ {
		g[t/ScreenWidth][t%ScreenWidth] = packed[t/8]&(0x80>>(t%8)) != 0
	}

	return g
}

func (g Grid) String() string {
	sb := strings.Builder{}
	sb.Grow((ScreenWidth + 1) * ScreenHeight)
	for y := range g {
		for _, on := range g[y] {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// Framebuffer is the monochrome screen of the machine.
// Sprites are XORed onto it; erasing a lit pixel is a collision.
type Framebuffer struct {
	grid  Grid
	dirty bool
}

func (fb *Framebuffer) Clear() {
	fb.grid = Grid{}
	fb.dirty = true
}

// TogglePixel flips the pixel at (x, y), wrapping both coordinates, and
// reports whether it was lit before.
func (fb *Framebuffer) TogglePixel(x, y int) bool {
	x = ((x % ScreenWidth) + ScreenWidth) % ScreenWidth
	y = ((y % ScreenHeight) + ScreenHeight) % ScreenHeight

	wasSet := fb.grid[y][x]
	fb.grid[y][x] = !wasSet
	fb.dirty = true

	return wasSet
}

// DrawSprite XORs rows onto the screen at (x, y), one byte per row,
// most significant bit first. Returns whether there was a collision or not.
func (fb *Framebuffer) DrawSprite(x, y int, rows []byte) bool {
	collided := false
	for r, row := range rows {
		for c := 0; c < 8; c++ {
			if row&(0x80>>c) == 0 {
				continue
			}
			if fb.TogglePixel(x+c, y+r) {
				collided = true
			}
		}
	}

	return collided
}

func (fb *Framebuffer) Snapshot() Grid {
	return fb.grid
}

func (fb *Framebuffer) IsSet(x, y int) bool {
	return fb.grid[((y%ScreenHeight)+ScreenHeight)%ScreenHeight][((x%ScreenWidth)+ScreenWidth)%ScreenWidth]
}

// Dirty reports whether the screen changed since it was last presented.
func (fb *Framebuffer) Dirty() bool {
	return fb.dirty
}

func (fb *Framebuffer) markClean() {
	fb.dirty = false
}
