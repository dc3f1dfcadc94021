// Package term reads the keypad from a terminal in raw mode.
package term

import (
	"log/slog"
	"time"

	"github.com/guslan/chip8"
	"github.com/pkg/term"
)

const (
	keyEsc   = 0x1B
	keyCtrlC = 0x03

	DefaultDevice = "/dev/tty"
	// DefaultHold is how long a key counts as pressed after its last byte.
	// Terminals report no key releases, only auto-repeat.
	DefaultHold = 150 * time.Millisecond
)

// Keyboard is a chip8.Keyboard fed from a raw-mode terminal.
// ESC or Ctrl-C ask the machine to quit.
type Keyboard struct {
	*chip8.HoldingKeyboard

	device string
	lookup map[rune]byte

	tty   *term.Term
	input chan []byte
}

type KeyboardConfig struct {
	Device string
	Hold   time.Duration
	Layout chip8.KeyboardLayout
}

type KeyboardConfigCb func(config *KeyboardConfig)

func NewKeyboard(configs ...KeyboardConfigCb) *Keyboard {
	config := &KeyboardConfig{
		Device: DefaultDevice,
		Hold:   DefaultHold,
		Layout: chip8.DefaultKeyboardLayout,
	}
	for _, cb := range configs {
		cb(config)
	}

	return &Keyboard{
		HoldingKeyboard: chip8.NewHoldingKeyboard(config.Hold),
		device:          config.Device,
		lookup:          chip8.LookupMap(config.Layout),
		input:           make(chan []byte, 64),
	}
}

// Boot implements chip8.Keyboard. It puts the terminal in raw mode.
func (kb *Keyboard) Boot() error {
	tty, err := term.Open(kb.device, term.RawMode)
	if err != nil {
		return err
	}
	kb.tty = tty

	go kb.read(tty)

	return nil
}

// Close restores the terminal
func (kb *Keyboard) Close() error {
	tty := kb.tty
	if tty == nil {
		return nil
	}
	kb.tty = nil

	if err := tty.Restore(); err != nil {
		return err
	}

	return tty.Close()
}

func (kb *Keyboard) read(tty *term.Term) {
	for {
		buf := make([]byte, 16)
		n, err := tty.Read(buf)
		if err != nil {
			slog.Warn("Stopped reading the terminal", slog.Any("error", err))
			kb.RequestQuit()
			return
		}
		kb.input <- buf[:n]
	}
}

// Poll implements chip8.Keyboard.
func (kb *Keyboard) Poll() error {
drain:
	for {
		select {
		case chunk := <-kb.input:
			kb.feed(chunk)
		default:
			break drain
		}
	}

	return kb.HoldingKeyboard.Poll()
}

// feed handles one read from the terminal
func (kb *Keyboard) feed(chunk []byte) {
	if len(chunk) == 0 {
		return
	}

	// a lone ESC is the key, anything longer is an escape sequence
	if chunk[0] == keyEsc {
		if len(chunk) == 1 {
			kb.RequestQuit()
		}
		return
	}

	for _, b := range chunk {
		if b == keyCtrlC {
			kb.RequestQuit()
			return
		}

		if k, ok := kb.lookup[rune(b)]; ok {
			kb.Tap(k)
		}
	}
}
