package chip8

import (
	"io"
	"os"
)

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render receives the whole screen every time it changes
	Render(Grid) error
}

// DummyDisplay is a display that does nothing
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(screen Grid) error {
	return nil
}

// RecordingDisplay keeps the last frame it was given
type RecordingDisplay struct {
	Frames int
	Last   Grid
}

func (d *RecordingDisplay) Boot() error {
	return nil
}

func (d *RecordingDisplay) Render(screen Grid) error {
	d.Frames++
	d.Last = screen

	return nil
}

const ESC = 0x1B

type TerminalDisplay struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewTerminalDisplay() *TerminalDisplay {
	return NewTerminalDisplayWithOutput(os.Stdout)
}

func NewTerminalDisplayWithOutput(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Display.
func (disp *TerminalDisplay) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', ';', '1', 'H',
		// clear the terminal
		ESC, '[', '2', 'J',
	})

	return err
}

// Render implements Display.
func (disp *TerminalDisplay) Render(screen Grid) error {
	buff := make([]byte, 0, (ScreenWidth*len(disp.OnChar)+3)*ScreenHeight+8)
	buff = append(buff, ESC, '[', '1', ';', '1', 'H')
	for y := range screen {
		for _, on := range screen[y] {
			if on {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}
		buff = append(buff, '|', '\r', '\n')
	}

	_, err := disp.terminal.Write(buff)
	return err
}
