// Package sdl is an SDL2 window frontend: it renders the screen and reads the keypad.
package sdl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/guslan/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	DefaultPixelSize = 20

	screenColor = 0x1A237E
	spriteColor = 0x9FA8DA
)

// IO is the input/output layer of the machine for the SDL frontend.
// All the SDL calls happen on the goroutine that calls Run.
type IO struct {
	*chip8.InMemoryKeyboard

	window  *sdl.Window
	surface *sdl.Surface

	title     string
	pixelSize int32
	keymap    map[sdl.Scancode]byte

	mu     sync.Mutex
	screen chip8.Grid
	dirty  bool
}

type IOConfig struct {
	Title     string
	PixelSize int32
	Layout    chip8.KeyboardLayout
}

type IOConfigCb func(config *IOConfig)

// NewIO returns a new I/O instance for the SDL frontend
func NewIO(configs ...IOConfigCb) *IO {
	config := &IOConfig{
		Title:     "chip8",
		PixelSize: DefaultPixelSize,
		Layout:    chip8.DefaultKeyboardLayout,
	}
	for _, cb := range configs {
		cb(config)
	}

	return &IO{
		InMemoryKeyboard: chip8.NewInMemoryKeyboard(),
		title:            config.Title,
		pixelSize:        max(config.PixelSize, 1),
		keymap:           keymap(config.Layout),
	}
}

// Boot implements chip8.Display. The window itself is created by Run.
func (io *IO) Boot() error {
	return nil
}

// Render implements chip8.Display.
func (io *IO) Render(screen chip8.Grid) error {
	io.mu.Lock()
	io.screen = screen
	io.dirty = true
	io.mu.Unlock()

	return nil
}

// setupWindow initialises and sets up the main SDL window
func (io *IO) setupWindow() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return err
	}

	window, err := sdl.CreateWindow(io.title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		chip8.ScreenWidth*io.pixelSize, chip8.ScreenHeight*io.pixelSize, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return err
	}
	io.window = window

	io.surface, err = window.GetSurface()
	if err != nil {
		io.destroy()
		return err
	}

	return io.surface.FillRect(nil, screenColor)
}

func (io *IO) destroy() {
	io.window.Destroy()
	sdl.Quit()
}

// Run opens the window and runs the CPU loop until the window is closed,
// ESC is pressed, ctx is done or the program halts.
// It must be called from the main goroutine.
func (io *IO) Run(ctx context.Context, cpu *chip8.Cpu) error {
	if err := io.setupWindow(); err != nil {
		return err
	}
	defer io.destroy()

	if err := cpu.Boot(); err != nil {
		return err
	}

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- cpu.Loop(ctx)
	}()

	ticker := time.NewTicker(time.Second / chip8.TimerFrequency)
	defer ticker.Stop()

	for {
		select {
		case err := <-loopErr:
			return err
		case <-ticker.C:
		}

		io.handleEvents()

		if err := io.draw(); err != nil {
			slog.Error("Error drawing the screen", slog.Any("error", err))
		}
	}
}

func (io *IO) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			code := t.Keysym.Scancode
			if code == sdl.SCANCODE_ESCAPE {
				io.RequestQuit()
				continue
			}

			k, ok := io.keymap[code]
			if !ok {
				continue
			}
			switch t.GetType() {
			case sdl.KEYDOWN:
				io.Press(k)
			case sdl.KEYUP:
				io.Release(k)
			}

		case *sdl.QuitEvent:
			io.RequestQuit()
		}
	}
}

// draw paints the last frame, if it changed
func (io *IO) draw() error {
	io.mu.Lock()
	screen, dirty := io.screen, io.dirty
	io.dirty = false
	io.mu.Unlock()

	if !dirty {
		return nil
	}

	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return err
	}
	for y := range screen {
		for x, on := range screen[y] {
			if !on {
				continue
			}
			rect := &sdl.Rect{X: int32(x) * io.pixelSize, Y: int32(y) * io.pixelSize, W: io.pixelSize, H: io.pixelSize}
			if err := io.surface.FillRect(rect, spriteColor); err != nil {
				return err
			}
		}
	}

	return io.window.UpdateSurface()
}

// scancode returns the SDL scancode of a layout rune.
// SDL numbers the letters from A and the digits from 1, with 0 last.
func scancode(r rune) (sdl.Scancode, bool) {
	switch {
	case 'a' <= r && r <= 'z':
		return sdl.SCANCODE_A + sdl.Scancode(r-'a'), true
	case 'A' <= r && r <= 'Z':
		return sdl.SCANCODE_A + sdl.Scancode(r-'A'), true
	case '1' <= r && r <= '9':
		return sdl.SCANCODE_1 + sdl.Scancode(r-'1'), true
	case r == '0':
		return sdl.SCANCODE_0, true
	}

	return sdl.SCANCODE_UNKNOWN, false
}

func keymap(layout chip8.KeyboardLayout) map[sdl.Scancode]byte {
	m := map[sdl.Scancode]byte{}
	for r, k := range chip8.LookupMap(layout) {
		if code, ok := scancode(r); ok {
			m[code] = k
		}
	}

	return m
}
