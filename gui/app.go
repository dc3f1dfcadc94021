package gui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
	"github.com/guslan/chip8/rom"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	DefaultPixelSize = 15
	ScreenPositionX  = 0
	ScreenPositionY  = ToolbarHeight + 1

	DebugPanelWidth = 260
	DebugPanelLines = 12

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

type ConsoleApp struct {
	// The keypad, fed from the window on every UI frame
	*chip8.InMemoryKeyboard
	// The underlying console
	Cpu *chip8.Cpu

	// Speed in Hz, as shown by the slider
	speed float32
	// Last frame handed over by the CPU
	screen   chip8.Grid
	screenMu sync.Mutex

	keyboardLayout    chip8.KeyboardLayout
	keyboardLookupMap map[ScanCode]byte

	pixelSize int32
	autostart bool

	useDebugger bool
	debugState  chip8.State
	debugLines  []chip8.DisassembledLine
	debugMu     sync.Mutex

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	loopErr     chan error
	loopRunning bool

	lastMessage      string
	lastMessageColor rl.Color
}

type AppConfig struct {
	Speed       uint
	PixelSize   int32
	Autostart   bool
	UseDebugger bool
	Layout      chip8.KeyboardLayout
	CpuConfigs  []chip8.CpuConfigCb
}

type AppConfigCb func(config *AppConfig)

func NewConsoleApp(configs ...AppConfigCb) *ConsoleApp {
	config := &AppConfig{
		Speed:     chip8.DefaultSpeed,
		PixelSize: DefaultPixelSize,
		Layout:    chip8.DefaultKeyboardLayout,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &ConsoleApp{
		InMemoryKeyboard:  chip8.NewInMemoryKeyboard(),
		Cpu:               nil,
		speed:             float32(config.Speed),
		keyboardLayout:    config.Layout,
		keyboardLookupMap: map[ScanCode]byte{},
		pixelSize:         max(config.PixelSize, 1),
		autostart:         config.Autostart,
		useDebugger:       config.UseDebugger,
		loopErr:           make(chan error, 1),
	}

	cpuConfigs := append([]chip8.CpuConfigCb{chip8.WithSpeed(config.Speed)}, config.CpuConfigs...)
	app.Cpu = chip8.NewCpu(chip8.NewMemory(), app, app, cpuConfigs...)
	app.Cpu.Stop()
	if app.useDebugger {
		app.Cpu.AddAfterFrameHook(app.captureDebugState)
	}

	app.updateKeyboardLookupMap()
	app.updateWindowSize()

	return app
}

// Run opens the window and drives the console until the window is closed
func (app *ConsoleApp) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := app.Cpu.Boot(); err != nil {
		return err
	}

	if app.autostart && app.hasProgramLoaded() {
		app.Cpu.Start()
	}
	app.startLoop(ctx)

	rl.InitWindow(int32(app.winW), int32(app.winH), "chip8")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		app.checkLoop()

		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions(ctx)
		app.handleKeyPress()
		app.updateCpuSpeed()

		app.drawMessageBar()
		app.drawScreen()
		app.drawDebugPanel()
		app.drawToolbar()

		rl.EndDrawing()
	}

	slog.Info("Window closed")
	app.RequestQuit()
	if app.loopRunning {
		<-app.loopErr
	}

	if app.Cpu.Halted() {
		return fmt.Errorf("%w: %w", chip8.ErrHalted, app.Cpu.LastError())
	}

	return nil
}

// Load reads the ROM at path into the console
func (app *ConsoleApp) Load(path string) error {
	if err := rom.LoadInto(app.Cpu, path); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return err
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)

	return nil
}

func (app *ConsoleApp) startLoop(ctx context.Context) {
	app.loopRunning = true
	go func(cpu *chip8.Cpu) {
		slog.Info("Starting CPU loop")
		app.loopErr <- cpu.Loop(ctx)
	}(app.Cpu)
}

// checkLoop reports a loop that ended while the window is still open
func (app *ConsoleApp) checkLoop() {
	if !app.loopRunning {
		return
	}

	select {
	case err := <-app.loopErr:
		app.loopRunning = false
		if err != nil {
			slog.Error("CPU stopped", slog.Any("error", err))
			app.showMessage(err.Error(), MessageError)
		}
	default:
	}
}

func (app *ConsoleApp) updateWindowSize() {
	app.winW = chip8.ScreenWidth * int(app.pixelSize)
	if app.useDebugger {
		app.winW += DebugPanelWidth
	}
	app.winH = chip8.ScreenHeight*int(app.pixelSize) + ToolbarHeight + MessageBarHeigh
	slog.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *ConsoleApp) updateKeyboardLookupMap() {
	app.keyboardLookupMap = keyboardLookupMap(app.keyboardLayout)
}

func (app *ConsoleApp) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		if len(files) > 0 && app.Load(files[0]) == nil {
			app.Cpu.Start()
		}
	}
}

func (app *ConsoleApp) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *ConsoleApp) handleActions(ctx context.Context) {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.Cpu.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.Cpu.Stop()
		slog.Info("Stopping the console")
	}
	if app.restBtn {
		app.Cpu.Reset()
		slog.Info("Resetting the program to the beginning")
		if !app.loopRunning {
			app.startLoop(ctx)
			app.showMessage("Program reset", MessageInfo)
		}
	}
	if app.stepBtn {
		if err := app.Cpu.Step(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Running a single cycle")
	}
}

func (app *ConsoleApp) handleKeyPress() {
	for scanCode, key := range app.keyboardLookupMap {
		if rl.IsKeyDown(int32(scanCode)) {
			app.Press(key)
		} else {
			app.Release(key)
		}
	}
}

func (app *ConsoleApp) updateCpuSpeed() {
	app.Cpu.SetSpeedInHz(uint(app.speed))
}

func (app *ConsoleApp) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.Cpu.IsRunning() {
		status = "Running"
	}
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", uint(app.speed)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speed = float32(chip8.DefaultSpeed)
	}

	app.speed = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", chip8.MinSpeed), fmt.Sprintf("%d Hz", chip8.MaxSpeed),
		app.speed,
		float32(chip8.MinSpeed),
		float32(chip8.MaxSpeed),
	)
}

func (app *ConsoleApp) showMessage(msg string, mType MessageType) {
	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *ConsoleApp) drawMessageBar() {
	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeigh,
		int32(app.winW),
		MessageBarHeigh,
		MessageBarBgColor,
	)

	rl.DrawText(
		app.lastMessage,
		MessageBarGap,
		int32(app.winH)-MessageBarHeigh+MessageBarGap,
		16,
		app.lastMessageColor,
	)
}

// captureDebugState runs as an after-frame hook, with the CPU locked
func (app *ConsoleApp) captureDebugState(cpu *chip8.Cpu) {
	state := cpu.State()
	lines := chip8.Disassemble(cpu.Memory, state.Pc, DebugPanelLines)

	app.debugMu.Lock()
	app.debugState = state
	app.debugLines = lines
	app.debugMu.Unlock()
}

func (app *ConsoleApp) drawDebugPanel() {
	if !app.useDebugger {
		return
	}

	app.debugMu.Lock()
	state, lines := app.debugState, app.debugLines
	app.debugMu.Unlock()

	x := int32(chip8.ScreenWidth)*app.pixelSize + MessageBarGap
	y := int32(ScreenPositionY + MessageBarGap)
	for _, line := range strings.Split(state.String(), "\n") {
		rl.DrawText(line, x, y, 10, rl.RayWhite)
		y += 12
	}

	y += 12
	for _, line := range lines {
		rl.DrawText(fmt.Sprintf("%03X  %s", line.Addr, line.Instruction), x, y, 10, rl.LightGray)
		y += 12
	}
}
