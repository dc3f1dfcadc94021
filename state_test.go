package chip8_test

import (
	"bytes"
	"testing"

	"github.com/guslan/chip8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateEncoding(t *testing.T) {
	cpu, _ := newTestCpu(t, []byte{
		0x6A, 0x7F, // LD VA, 0x7F
		0xA1, 0x23, // LD I, 0x123
		0x22, 0x08, // CALL 0x208
		0x00, 0x00,
		0xF0, 0x15, // LD DT, V0
	})
	runNCycles(t, cpu, 3)

	state := cpu.State()
	assert.Equal(t, uint16(0xF015), state.OpCode)
	assert.Equal(t, chip8.OpLdDtVx, state.Instruction.Op)
	assert.Equal(t, uint64(3), state.Cycles)

	b, err := state.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, chip8.StateSize)

	// opcode, pc
	assert.Equal(t, []byte{0xF0, 0x15, 0x02, 0x08}, b[0:4])
	// VA
	assert.Equal(t, byte(0x7F), b[4+0xA])
	// I, sp, first stack slot
	assert.Equal(t, []byte{0x01, 0x23, 0x01, 0x02, 0x06}, b[20:25])
	// dt, st, width, height
	assert.Equal(t, []byte{0, 0, 64, 32}, b[len(b)-4:])
}

func TestStateString(t *testing.T) {
	cpu, _ := newTestCpu(t, []byte{
		0x22, 0x04, // CALL 0x204
		0x00, 0x00,
		0x6B, 0x0C, // LD VB, 0x0C
	})
	runNCycles(t, cpu, 1)

	s := cpu.State().String()
	assert.Contains(t, s, "PC: 0x204  6B0C  LD VB, 0x0C")
	assert.Contains(t, s, "SP: 1 0x202")
}

func TestTerminalDisplay(t *testing.T) {
	out := bytes.Buffer{}
	display := chip8.NewTerminalDisplayWithOutput(&out)

	require.NoError(t, display.Boot())
	assert.Equal(t, "\x1b[1;1H\x1b[2J", out.String())
	out.Reset()

	var g chip8.Grid
	g[0][1] = true
	require.NoError(t, display.Render(g))

	lines := bytes.Split(bytes.TrimPrefix(out.Bytes(), []byte("\x1b[1;1H")), []byte("\r\n"))
	// the trailing line break leaves an empty element
	assert.Len(t, lines, chip8.ScreenHeight+1)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("  ##  ")))
	assert.True(t, bytes.HasSuffix(lines[0], []byte("|")))
}
