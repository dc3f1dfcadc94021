// Package tui is a terminal debugger for the console, built on tview.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/guslan/chip8"
	"github.com/guslan/chip8/rom"
	"github.com/rivo/tview"
)

const (
	// DefaultHold is how long a key counts as pressed after the terminal reported it
	DefaultHold = 150 * time.Millisecond

	listingLines = 8
	speedStep    = 50
	logLines     = 1000

	helpText = "F5 run/pause  F6 step  F7 reset  PgUp/PgDn speed  Esc quit"
)

// Debugger shows the screen, the registers and the logs of a console in the terminal.
// The keypad is read from the same terminal.
type Debugger struct {
	*chip8.HoldingKeyboard
	Cpu *chip8.Cpu

	app    *tview.Application
	screen *tview.Box
	state  *tview.TextView
	log    *tview.TextView
	help   *tview.TextView
	cols   *tview.Flex
	rows   *tview.Flex

	lookup map[rune]byte
	logger *slog.Logger

	mu     sync.Mutex
	grid   chip8.Grid
	status string
	halted bool

	// ctx of the current Run, for loops restarted by a reset
	ctx         context.Context
	loopErr     chan error
	loopRunning bool
}

type DebuggerConfig struct {
	Speed     uint
	Hold      time.Duration
	Layout    chip8.KeyboardLayout
	Autostart bool
	// LogLevel of the log pane
	LogLevel slog.Leveler
	// CpuConfigs are applied after the speed. A logger set here replaces the log pane.
	CpuConfigs []chip8.CpuConfigCb
}

type DebuggerConfigCb func(config *DebuggerConfig)

func NewDebugger(configs ...DebuggerConfigCb) *Debugger {
	config := &DebuggerConfig{
		Speed:    chip8.DefaultSpeed,
		Hold:     DefaultHold,
		Layout:   chip8.DefaultKeyboardLayout,
		LogLevel: slog.LevelInfo,
	}
	for _, cb := range configs {
		cb(config)
	}

	d := &Debugger{
		HoldingKeyboard: chip8.NewHoldingKeyboard(config.Hold),

		app:    tview.NewApplication(),
		screen: tview.NewBox(),
		state: tview.NewTextView().
			SetWrap(false),
		log: tview.NewTextView().
			SetMaxLines(logLines),
		help: tview.NewTextView().
			SetText(helpText),
		cols: tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),

		lookup:  chip8.LookupMap(config.Layout),
		loopErr: make(chan error, 1),
	}

	d.logger = slog.New(slog.NewTextHandler(d.log, &slog.HandlerOptions{Level: config.LogLevel}))

	d.screen.SetBorder(true).SetTitle(" chip8 ")
	d.screen.SetDrawFunc(d.drawScreen)
	d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	d.help.SetTextColor(tcell.ColorBlack)
	d.help.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.screen, chip8.ScreenWidth+2, 0, false).
		AddItem(d.state, 0, 1, false)
	d.rows.
		AddItem(d.cols, chip8.ScreenHeight/2+2, 0, false).
		AddItem(d.log, 0, 1, false).
		AddItem(d.help, 1, 0, false)
	d.app.SetRoot(d.rows, true)
	d.app.SetInputCapture(d.capture)

	cpuConfigs := append([]chip8.CpuConfigCb{
		chip8.WithSpeed(config.Speed),
		chip8.WithLogger(d.logger),
	}, config.CpuConfigs...)
	d.Cpu = chip8.NewCpu(chip8.NewMemory(), d, d, cpuConfigs...)
	if !config.Autostart {
		d.Cpu.Stop()
	}
	d.Cpu.AddAfterFrameHook(d.captureState)
	d.Cpu.AddErrorHook(d.captureState)

	return d
}

// Logger writes into the log pane
func (d *Debugger) Logger() *slog.Logger {
	return d.logger
}

// Load reads the ROM at path into the console
func (d *Debugger) Load(path string) error {
	if err := rom.LoadInto(d.Cpu, path); err != nil {
		return err
	}

	d.captureState(d.Cpu)

	return nil
}

// Boot implements chip8.Display and chip8.Keyboard.
func (d *Debugger) Boot() error {
	return nil
}

// Render implements chip8.Display.
func (d *Debugger) Render(screen chip8.Grid) error {
	d.mu.Lock()
	d.grid = screen
	d.mu.Unlock()

	return nil
}

// Run takes over the terminal until Esc is pressed or ctx is done.
// A halted program keeps the debugger open, its error is returned when it closes.
func (d *Debugger) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.Cpu.Boot(); err != nil {
		return err
	}

	d.ctx = ctx
	d.startLoop(ctx)
	go d.refresh(ctx)
	go func() {
		<-ctx.Done()
		d.app.Stop()
	}()

	uiErr := d.app.Run()

	d.RequestQuit()
	cancel()
	if d.isLoopRunning() {
		<-d.loopErr
	}

	if uiErr != nil {
		return uiErr
	}
	if d.Cpu.Halted() {
		return fmt.Errorf("%w: %w", chip8.ErrHalted, d.Cpu.LastError())
	}

	return nil
}

func (d *Debugger) startLoop(ctx context.Context) {
	d.mu.Lock()
	d.loopRunning = true
	d.halted = false
	d.mu.Unlock()

	go func(cpu *chip8.Cpu) {
		err := cpu.Loop(ctx)

		d.mu.Lock()
		d.loopRunning = false
		d.halted = cpu.Halted()
		d.mu.Unlock()

		if err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("CPU stopped", slog.Any("error", err))
		}
		d.loopErr <- err
	}(d.Cpu)
}

func (d *Debugger) isLoopRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.loopRunning
}

// refresh redraws the application at the timer rate.
// It is the only goroutine queueing updates, the CPU just leaves its state under mu.
func (d *Debugger) refresh(ctx context.Context) {
	ticker := time.NewTicker(time.Second / chip8.TimerFrequency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		status, halted := d.status, d.halted
		d.mu.Unlock()

		d.app.QueueUpdateDraw(func() {
			if halted {
				d.state.SetTextColor(tcell.ColorWhite)
				d.state.SetBackgroundColor(tcell.ColorDarkRed)
			} else {
				d.state.SetTextColor(tcell.ColorWhite)
				d.state.SetBackgroundColor(tcell.ColorDarkBlue)
			}
			d.state.SetText(status)
		})
	}
}

// captureState runs as an after-frame hook, with the CPU locked.
// Frames keep coming while the CPU is paused, so the pane follows steps and resets.
func (d *Debugger) captureState(cpu *chip8.Cpu) {
	status := stateText(cpu)

	d.mu.Lock()
	d.status = status
	d.mu.Unlock()
}

func stateText(cpu *chip8.Cpu) string {
	state := cpu.State()

	var b strings.Builder
	b.WriteString(state.String())
	fmt.Fprintf(&b, "\n\ncycles: %d  frames: %d\n\n", state.Cycles, state.Frames)
	for i, line := range chip8.Disassemble(cpu.Memory, state.Pc, listingLines) {
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%03X  %04X  %s\n", marker, line.Addr, line.Instruction.Raw, line.Instruction)
	}

	return b.String()
}

// capture handles the keys before tview does
func (d *Debugger) capture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		d.RequestQuit()
		d.app.Stop()
		return nil

	case tcell.KeyF5:
		if d.Cpu.IsRunning() {
			d.Cpu.Stop()
		} else {
			d.Cpu.Start()
		}
		return nil

	case tcell.KeyF6:
		if err := d.Cpu.Step(); err != nil {
			d.logger.Warn("Step failed", slog.Any("error", err))
		}
		return nil

	case tcell.KeyF7:
		d.Cpu.Reset()
		if !d.isLoopRunning() {
			// drain the previous result before a new loop can send its own
			<-d.loopErr
			d.startLoop(d.ctx)
		}
		return nil

	case tcell.KeyPgUp:
		d.Cpu.SetSpeedInHz(d.Cpu.SpeedInHz() + speedStep)
		return nil

	case tcell.KeyPgDn:
		if speed := d.Cpu.SpeedInHz(); speed > speedStep {
			d.Cpu.SetSpeedInHz(speed - speedStep)
		}
		return nil

	case tcell.KeyRune:
		if k, ok := d.lookup[event.Rune()]; ok {
			d.Tap(k)
			return nil
		}
	}

	return event
}

func (d *Debugger) drawScreen(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	d.mu.Lock()
	grid := d.grid
	d.mu.Unlock()

	style := tcell.StyleDefault.Foreground(tcell.ColorLightGreen).Background(tcell.ColorBlack)
	for row, line := range halfBlocks(grid) {
		if row+1 >= height-1 {
			break
		}
		for col, r := range line {
			if col+1 >= width-1 {
				break
			}
			screen.SetContent(x+1+col, y+1+row, r, nil, style)
		}
	}

	return x + 1, y + 1, width - 2, height - 2
}

// halfBlocks packs two screen rows into each line of terminal cells
func halfBlocks(grid chip8.Grid) [chip8.ScreenHeight / 2][chip8.ScreenWidth]rune {
	var cells [chip8.ScreenHeight / 2][chip8.ScreenWidth]rune
	for row := range cells {
		for col := range cells[row] {
			cells[row][col] = halfBlock(grid[2*row][col], grid[2*row+1][col])
		}
	}

	return cells
}

func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}

	return ' '
}
