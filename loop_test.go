package chip8_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopNeedsBoot(t *testing.T) {
	cpu := chip8.NewCpu(chip8.NewMemory(), chip8.NewDummyDisplay(), chip8.NewInMemoryKeyboard(), chip8.WithLogger(quietLogger))

	assert.ErrorIs(t, cpu.Loop(context.Background()), chip8.ErrCpuIsNotBooted)
	assert.ErrorIs(t, cpu.Step(), chip8.ErrCpuIsNotBooted)
}

// waitingHook returns a channel closed the first time the CPU waits for a key
func waitingHook(cpu *chip8.Cpu) <-chan struct{} {
	waiting := make(chan struct{})
	once := sync.Once{}
	cpu.AddAfterCycleHook(func(cpu *chip8.Cpu) {
		if cpu.IsWaitingForKey() {
			once.Do(func() { close(waiting) })
		}
	})

	return waiting
}

func runLoop(ctx context.Context, cpu *chip8.Cpu) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- cpu.LoopAtSpeed(ctx, chip8.MaxSpeed)
	}()

	return done
}

func TestKeyWaitEndsOnQuit(t *testing.T) {
	cpu, kb := newTestCpu(t, []byte{
		0x65, 0x33, // LD V5, 0x33
		0xF5, 0x0A, // LD V5, K
	})
	waiting := waitingHook(cpu)

	done := runLoop(context.Background(), cpu)

	select {
	case <-waiting:
	case <-time.After(5 * time.Second):
		t.Fatal("the CPU never started waiting for a key")
	}
	kb.RequestQuit()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("the loop did not return after quit")
	}

	assert.True(t, cpu.IsWaitingForKey())
	assert.Equal(t, byte(0x33), cpu.V[5])
	assert.Equal(t, uint16(0x204), cpu.Pc)
}

func TestKeyWaitEndsOnCancel(t *testing.T) {
	cpu, _ := newTestCpu(t, []byte{
		0xF2, 0x0A, // LD V2, K
	})
	waiting := waitingHook(cpu)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runLoop(ctx, cpu)

	select {
	case <-waiting:
	case <-time.After(5 * time.Second):
		t.Fatal("the CPU never started waiting for a key")
	}
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("the loop did not return after cancel")
	}

	assert.Equal(t, byte(0), cpu.V[2])
}

func TestLoopReturnsHalt(t *testing.T) {
	cpu, _ := newTestCpu(t, []byte{
		0x00, 0xEE, // RET
	})

	select {
	case err := <-runLoop(context.Background(), cpu):
		require.ErrorIs(t, err, chip8.ErrStackUnderflow)
	case <-time.After(5 * time.Second):
		t.Fatal("the loop did not return after the halt")
	}

	assert.True(t, cpu.Halted())
	assert.ErrorIs(t, cpu.Loop(context.Background()), chip8.ErrHalted)
}

func TestLoopRunsTimersAndPresents(t *testing.T) {
	kb := chip8.NewInMemoryKeyboard()
	display := &chip8.RecordingDisplay{}
	cpu := chip8.NewCpu(chip8.NewMemory(), display, kb, chip8.WithLogger(quietLogger))
	require.NoError(t, cpu.LoadProgram([]byte{
		0x60, 0x03, // LD V0, 3
		0xF0, 0x15, // LD DT, V0
		0xF0, 0x29, // LD F, V0
		0xD0, 0x05, // DRW V0, V0, 5
		0x12, 0x08, // JP 0x208
	}))
	require.NoError(t, cpu.Boot())

	frames := make(chan struct{})
	once := sync.Once{}
	cpu.AddAfterFrameHook(func(cpu *chip8.Cpu) {
		if cpu.Frames() >= 10 {
			once.Do(func() { close(frames) })
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := runLoop(ctx, cpu)

	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("no frames were run")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	assert.Equal(t, byte(0), cpu.Dt)
	assert.GreaterOrEqual(t, display.Frames, 1)
	assert.Equal(t, cpu.Screen.Snapshot(), display.Last)
	assert.NotEqual(t, chip8.Grid{}, display.Last)
}

func TestStepWhilePaused(t *testing.T) {
	cpu, _ := newTestCpu(t, []byte{
		0x60, 0x01,
		0x61, 0x02,
	})

	cpu.Stop()
	assert.False(t, cpu.IsRunning())

	require.NoError(t, cpu.Step())
	assert.Equal(t, byte(1), cpu.V[0])
	assert.Equal(t, uint16(0x202), cpu.Pc)
	assert.False(t, cpu.IsRunning())

	cpu.Start()
	assert.True(t, cpu.IsRunning())
}

func TestPausedLoopDoesNotExecute(t *testing.T) {
	cpu, kb := newTestCpu(t, []byte{
		0x60, 0x01,
	})
	cpu.Stop()

	frames := make(chan struct{})
	once := sync.Once{}
	cpu.AddAfterFrameHook(func(cpu *chip8.Cpu) {
		if cpu.Frames() >= 3 {
			once.Do(func() { close(frames) })
		}
	})

	done := runLoop(context.Background(), cpu)
	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("no frames were run")
	}
	kb.RequestQuit()
	require.NoError(t, <-done)

	assert.Equal(t, uint64(0), cpu.Cycles())
	assert.Equal(t, byte(0), cpu.V[0])
}
