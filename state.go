package chip8

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// State is a copy of the machine registers taken between two cycles
type State struct {
	Registers
	Stack Stack

	// OpCode is the word at PC, the next to be executed
	OpCode      uint16
	Instruction Instruction

	Cycles        uint64
	Frames        uint64
	Halted        bool
	WaitingForKey bool
}

// StateSize is the length of an encoded State
const StateSize = 2 + 2 + 16 + 2 + 1 + 2*StackDepth + 1 + 1 + 2

// State copies the registers of the CPU.
// It is meant for hooks, or to be called while no loop is running.
func (cpu *Cpu) State() State {
	pc := cpu.Pc & AddressMask
	opCode := uint16(cpu.load(pc))<<8 | uint16(cpu.load(pc+1))

	return State{
		Registers:     cpu.Registers,
		Stack:         cpu.Stack,
		OpCode:        opCode,
		Instruction:   Decode(opCode),
		Cycles:        cpu.cycles,
		Frames:        cpu.frames,
		Halted:        cpu.halted,
		WaitingForKey: cpu.waitingForKey,
	}
}

// MarshalBinary encodes the state for the debugger:
//
//	opcode:2 pc:2 V0..VF:16 I:2 sp:1 stack:32 dt:1 st:1 width:1 height:1
//
// Words are big endian.
func (s State) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, StateSize)

	buf = binary.BigEndian.AppendUint16(buf, s.OpCode)
	buf = binary.BigEndian.AppendUint16(buf, s.Pc)
	buf = append(buf, s.V[:]...)
	buf = binary.BigEndian.AppendUint16(buf, s.I)
	buf = append(buf, s.Stack.Sp)
	for _, addr := range s.Stack.Data {
		buf = binary.BigEndian.AppendUint16(buf, addr)
	}
	buf = append(buf, s.Dt, s.St)
	buf = append(buf, ScreenWidth, ScreenHeight)

	return buf, nil
}

// String dumps the registers one per line
func (s State) String() string {
	sb := strings.Builder{}

	fmt.Fprintf(&sb, "PC: 0x%03X  %04X  %s\n", s.Pc, s.OpCode, s.Instruction)
	fmt.Fprintf(&sb, "I:  0x%03X\n", s.I)
	for i, v := range s.V {
		fmt.Fprintf(&sb, "V%X: 0x%02X", i, v)
		if i%4 == 3 {
			sb.WriteByte('\n')
		} else {
			sb.WriteString("  ")
		}
	}
	fmt.Fprintf(&sb, "DT: %d  ST: %d\n", s.Dt, s.St)
	fmt.Fprintf(&sb, "SP: %d", s.Stack.Sp)
	for i := byte(0); i < s.Stack.Sp; i++ {
		fmt.Fprintf(&sb, " 0x%03X", s.Stack.Data[i])
	}
	sb.WriteByte('\n')

	return sb.String()
}
