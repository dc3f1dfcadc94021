package chip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registers of the machine. VF doubles as carry, borrow and collision flag.
type Registers struct {
	// V 8-bit registers
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Program counter
	Pc uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
}

// Chip-8 CPU
type Cpu struct {
	Memory *Memory
	Registers
	Stack  Stack
	Screen Framebuffer

	Display  Display
	Keyboard Keyboard
	Random   RandomSource

	logger *slog.Logger

	// mu serializes the driving loop with the control methods
	mu sync.Mutex

	cycles              uint64
	frames              uint64
	unknownInstructions uint64

	speedInHz uint
	step      time.Duration

	program []byte

	isBooted       bool
	isPaused       bool
	halted         bool
	waitingForKey  bool
	keyDstRegister byte
	keysAtWait     KeyboardState
	lastError      error

	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

const (
	DefaultSpeed uint = 500
	MaxSpeed     uint = 2000
	MinSpeed     uint = 1

	// TimerFrequency is the rate of the delay and sound timers, in Hz
	TimerFrequency = 60
)

type CpuConfig struct {
	// Speed in instructions per second
	Speed  uint
	Random RandomSource
	Logger *slog.Logger
}

type CpuConfigCb func(config *CpuConfig)

func WithSpeed(hz uint) CpuConfigCb {
	return func(config *CpuConfig) {
		config.Speed = hz
	}
}

func WithSeed(seed uint64) CpuConfigCb {
	return func(config *CpuConfig) {
		config.Random = NewSeededRandom(seed)
	}
}

func WithLogger(logger *slog.Logger) CpuConfigCb {
	return func(config *CpuConfig) {
		config.Logger = logger
	}
}

func NewCpu(memory *Memory, display Display, keyboard Keyboard, configs ...CpuConfigCb) *Cpu {
	config := &CpuConfig{
		Speed:  DefaultSpeed,
		Random: CryptoRandom{},
		Logger: slog.Default(),
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu := &Cpu{
		Memory: memory,
		Registers: Registers{
			Pc: StartOfProgram,
		},

		Display:  display,
		Keyboard: keyboard,
		Random:   config.Random,

		logger: config.Logger,
	}
	cpu.setSpeedInHz(config.Speed)

	return cpu
}

func (cpu *Cpu) IsRunning() bool {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return !cpu.isPaused
}

func (cpu *Cpu) IsSoundTimerActive() bool {
	return cpu.St > 0
}

func (cpu *Cpu) IsDelayTimerActive() bool {
	return cpu.Dt > 0
}

func (cpu *Cpu) IsWaitingForKey() bool {
	return cpu.waitingForKey
}

// Halted reports whether a stack fault stopped the program.
func (cpu *Cpu) Halted() bool {
	return cpu.halted
}

// LastError is the last error a cycle reported, recovered or not.
func (cpu *Cpu) LastError() error {
	return cpu.lastError
}

func (cpu *Cpu) SpeedInHz() uint {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.speedInHz
}

// SetSpeedInHz changes the instruction rate. The timers keep their 60Hz.
func (cpu *Cpu) SetSpeedInHz(inHz uint) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.setSpeedInHz(inHz) {
		cpu.logger.Info("CPU speed changed", slog.Uint64("hz", uint64(cpu.speedInHz)))
	}
}

func (cpu *Cpu) setSpeedInHz(inHz uint) bool {
	inHz = min(max(inHz, MinSpeed), MaxSpeed)
	if inHz == cpu.speedInHz {
		return false
	}

	cpu.speedInHz = inHz
	cpu.step = time.Second / time.Duration(inHz)

	return true
}

func (cpu *Cpu) Cycles() uint64 {
	return cpu.cycles
}

func (cpu *Cpu) Frames() uint64 {
	return cpu.frames
}

// UnknownInstructions counts the instructions skipped because they could not be decoded.
func (cpu *Cpu) UnknownInstructions() uint64 {
	return cpu.unknownInstructions
}

// Boot initializes all the components
// If the CPU was already booted, this method is a noop
func (cpu *Cpu) Boot() error {
	if cpu.isBooted {
		return nil
	}

	if err := cpu.Display.Boot(); err != nil {
		return err
	}

	if err := cpu.Keyboard.Boot(); err != nil {
		return err
	}

	cpu.isBooted = true

	return nil
}

// LoadProgram loads the program into memory and sets the PC to the start-of-program address
func (cpu *Cpu) LoadProgram(program []byte) error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if err := cpu.Memory.LoadProgram(program); err != nil {
		return &LoadError{Err: err}
	}
	cpu.program = append(cpu.program[:0], program...)
	cpu.reset()

	cpu.logger.Info("Program loaded", slog.Int("size", len(program)))

	return nil
}

// Reset restarts the loaded program from a clean machine
func (cpu *Cpu) Reset() {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	cpu.reset()
}

func (cpu *Cpu) reset() {
	cpu.Memory.LoadFont()
	if cpu.program != nil {
		// the program may have overwritten itself
		_ = cpu.Memory.LoadProgram(cpu.program)
	}

	cpu.Registers = Registers{Pc: StartOfProgram}
	cpu.Stack.Reset()
	cpu.Screen.Clear()

	cpu.frames = 0
	cpu.cycles = 0
	cpu.unknownInstructions = 0
	cpu.halted = false
	cpu.waitingForKey = false
	cpu.lastError = nil
}

// Cycle fetches, decodes and executes the instruction at PC.
//
// While the CPU waits for a key (FX0A) nothing is fetched; each call checks the
// keyboard instead and returns, so the caller keeps control. A stack fault
// halts the CPU and is returned; unknown instructions are logged and skipped.
// Cycle is not synchronized, use Step while a Loop is running.
func (cpu *Cpu) Cycle() error {
	if cpu.halted {
		return fmt.Errorf("%w: %w", ErrHalted, cpu.lastError)
	}

	if cpu.waitingForKey {
		cpu.checkKeyWait()
		return nil
	}

	cpu.runBeforeCycleHooks()

	pc := cpu.Pc & AddressMask
	opCode := uint16(cpu.load(pc))<<8 | uint16(cpu.load(pc+1))
	cpu.Pc = (pc + 2) & AddressMask

	ins := Decode(opCode)
	if cpu.logger.Enabled(context.Background(), slog.LevelDebug) {
		cpu.logger.Debug(
			"exec",
			slog.String("pc", fmt.Sprintf("0x%03X", pc)),
			slog.String("opcode", fmt.Sprintf("%04X", opCode)),
			slog.String("instr", ins.String()),
		)
	}

	err := cpu.execute(ins)
	cpu.cycles++

	switch {
	case err == nil:
	case errors.Is(err, ErrUnknownInstruction):
		cpu.unknownInstructions++
		cpu.lastError = err
		cpu.logger.Warn("Skipping unknown instruction", slog.Any("error", err))
		cpu.runErrorHooks()
	default:
		// leave PC on the faulting instruction
		cpu.Pc = pc
		cpu.halted = true
		cpu.lastError = err
		cpu.logger.Error("CPU halted", slog.Any("error", err), slog.String("pc", fmt.Sprintf("0x%03X", pc)))
		cpu.runErrorHooks()
		return err
	}

	cpu.runAfterCycleHooks()

	return nil
}

func (cpu *Cpu) checkKeyWait() {
	now := snapshotKeys(cpu.Keyboard)
	if k, ok := newlyPressed(cpu.keysAtWait, now); ok {
		cpu.V[cpu.keyDstRegister] = k
		cpu.waitingForKey = false
	}
	cpu.keysAtWait = now
}

// Tick decrements both timers, never below zero. It must be called at 60Hz.
func (cpu *Cpu) Tick() {
	if cpu.Dt > 0 {
		cpu.Dt--
	}
	if cpu.St > 0 {
		cpu.St--
	}
}

// Present hands the screen to the display if it changed since the last call
func (cpu *Cpu) Present() error {
	if !cpu.Screen.Dirty() {
		return nil
	}

	cpu.Screen.markClean()

	return cpu.Display.Render(cpu.Screen.Snapshot())
}

// load reads memory through the 12-bit address bus
func (cpu *Cpu) load(addr uint16) byte {
	b, err := cpu.Memory.Read(addr & AddressMask)
	if err != nil {
		panic(err)
	}

	return b
}

func (cpu *Cpu) store(addr uint16, b byte) {
	if err := cpu.Memory.Write(addr&AddressMask, b); err != nil {
		panic(err)
	}
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
