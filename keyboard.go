package chip8

import (
	"context"
	"sync"
	"time"
)

const KeyCount = 16

type KeyboardState [KeyCount]bool

// Keyboard is the source of the 16-key keypad state
type Keyboard interface {
	// Boot initializes the component
	Boot() error
	// Poll refreshes the state from the underlying source.
	// It returns ErrQuit once the source asks the machine to stop.
	Poll() error
	IsPressed(k byte) bool
}

func snapshotKeys(kb Keyboard) KeyboardState {
	var s KeyboardState
	for k := range s {
		s[k] = kb.IsPressed(byte(k))
	}

	return s
}

// newlyPressed returns the lowest key that is down now and was up in prev.
func newlyPressed(prev, now KeyboardState) (byte, bool) {
	for k := range now {
		if now[k] && !prev[k] {
			return byte(k), true
		}
	}

	return 0, false
}

// WaitForKey polls kb every interval until a key goes down and returns its index.
// Keys already held when the wait starts have to be released and pressed again.
func WaitForKey(ctx context.Context, kb Keyboard, every time.Duration) (byte, error) {
	if err := kb.Poll(); err != nil {
		return 0, err
	}
	prev := snapshotKeys(kb)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}

		if err := kb.Poll(); err != nil {
			return 0, err
		}
		now := snapshotKeys(kb)
		if k, ok := newlyPressed(prev, now); ok {
			return k, nil
		}
		prev = now
	}
}

// InMemoryKeyboard is a keypad whose state is set by the program embedding the machine.
// It is safe to press keys from another goroutine than the one running the Cpu.
type InMemoryKeyboard struct {
	mu    sync.RWMutex
	state KeyboardState
	quit  bool
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// Poll implements Keyboard.
func (kb *InMemoryKeyboard) Poll() error {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	if kb.quit {
		return ErrQuit
	}

	return nil
}

// IsPressed implements Keyboard.
func (kb *InMemoryKeyboard) IsPressed(k byte) bool {
	if k >= KeyCount {
		return false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state[k]
}

func (kb *InMemoryKeyboard) Get() KeyboardState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state
}

func (kb *InMemoryKeyboard) Set(state KeyboardState) {
	kb.mu.Lock()
	kb.state = state
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Press(k byte) {
	kb.setKey(k, true)
}

func (kb *InMemoryKeyboard) Release(k byte) {
	kb.setKey(k, false)
}

func (kb *InMemoryKeyboard) setKey(k byte, down bool) {
	if k >= KeyCount {
		return
	}

	kb.mu.Lock()
	kb.state[k] = down
	kb.mu.Unlock()
}

// RequestQuit makes every following Poll return ErrQuit.
func (kb *InMemoryKeyboard) RequestQuit() {
	kb.mu.Lock()
	kb.quit = true
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) QuitRequested() bool {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.quit
}

// HoldingKeyboard is an InMemoryKeyboard for sources that report presses but no releases,
// like terminals. A tapped key stays down until Hold has passed since its last tap.
type HoldingKeyboard struct {
	*InMemoryKeyboard

	Hold time.Duration
	// Now is the clock used to expire the keys
	Now func() time.Time

	mu       sync.Mutex
	lastSeen [KeyCount]time.Time
}

func NewHoldingKeyboard(hold time.Duration) *HoldingKeyboard {
	return &HoldingKeyboard{
		InMemoryKeyboard: NewInMemoryKeyboard(),
		Hold:             hold,
		Now:              time.Now,
	}
}

// Tap presses k and restarts its hold window.
func (kb *HoldingKeyboard) Tap(k byte) {
	if k >= KeyCount {
		return
	}

	kb.mu.Lock()
	kb.lastSeen[k] = kb.Now()
	kb.mu.Unlock()

	kb.Press(k)
}

// Poll implements Keyboard. It releases the keys whose hold window is over.
func (kb *HoldingKeyboard) Poll() error {
	now := kb.Now()

	kb.mu.Lock()
	for k, seen := range kb.lastSeen {
		if !seen.IsZero() && now.Sub(seen) > kb.Hold {
			kb.lastSeen[k] = time.Time{}
			kb.Release(byte(k))
		}
	}
	kb.mu.Unlock()

	return kb.InMemoryKeyboard.Poll()
}
