package chip8

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// LoopAtSpeed sets the speed and starts the loop
func (cpu *Cpu) LoopAtSpeed(ctx context.Context, speedInHz uint) error {
	cpu.SetSpeedInHz(speedInHz)
	return cpu.Loop(ctx)
}

// Loop drives the CPU until ctx is cancelled, the keyboard asks to quit or the
// program halts.
//
// Instructions run at the configured speed and the timers at 60Hz, each on its
// own ticker. The screen is presented once per timer tick, when it changed.
// Loop returns nil on quit, ctx.Err() on cancellation and the halting error
// otherwise. The machine state is left as it was for inspection.
func (cpu *Cpu) Loop(ctx context.Context) error {
	cpu.mu.Lock()
	if !cpu.isBooted {
		cpu.mu.Unlock()
		return ErrCpuIsNotBooted
	}
	if cpu.halted {
		cpu.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrHalted, cpu.lastError)
	}
	step := cpu.step
	cpu.mu.Unlock()

	cycles := time.NewTicker(step)
	defer cycles.Stop()
	frames := time.NewTicker(time.Second / TimerFrequency)
	defer frames.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-cycles.C:
			done, err := cpu.runNextCycle()
			if err != nil {
				return err
			} else if done {
				return nil
			}

			if s := cpu.currentStep(); s != step {
				step = s
				cycles.Reset(step)
			}

		case <-frames.C:
			if err := cpu.runFrame(); err != nil {
				return err
			}
		}
	}
}

// Step runs a single cycle bypassing the pause state and presents the screen
func (cpu *Cpu) Step() error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if !cpu.isBooted {
		return ErrCpuIsNotBooted
	}

	if err := cpu.Cycle(); err != nil {
		return err
	}

	return cpu.Present()
}

// Start resumes the execution
func (cpu *Cpu) Start() {
	cpu.setPaused(false)
}

// Stop pauses the execution. The loop keeps presenting frames and polling the keyboard.
func (cpu *Cpu) Stop() {
	cpu.setPaused(true)
}

func (cpu *Cpu) setPaused(paused bool) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if cpu.isPaused == paused {
		return
	}
	cpu.isPaused = paused

	if paused {
		cpu.logger.Info("CPU paused")
	} else {
		cpu.logger.Info("CPU resumed")
	}
}

func (cpu *Cpu) currentStep() time.Duration {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	return cpu.step
}

func (cpu *Cpu) runNextCycle() (bool, error) {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if err := cpu.Keyboard.Poll(); errors.Is(err, ErrQuit) {
		cpu.logger.Info("Quit requested")
		return true, nil
	} else if err != nil {
		return false, err
	}

	if cpu.isPaused {
		return false, nil
	}

	return false, cpu.Cycle()
}

func (cpu *Cpu) runFrame() error {
	cpu.mu.Lock()
	defer cpu.mu.Unlock()

	if !cpu.isPaused {
		cpu.Tick()
	}
	cpu.frames++

	if err := cpu.Present(); err != nil {
		cpu.lastError = err
		cpu.logger.Error("Display failed", slog.Any("error", err))
		cpu.runErrorHooks()
		return err
	}

	cpu.runAfterFrameHooks()

	return nil
}
