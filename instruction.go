package chip8

import "fmt"

// Op identifies one of the 35 CHIP-8 instructions.
type Op byte

const (
	OpUnknown Op = iota
	OpCls        // 00E0
	OpRet        // 00EE
	OpJp         // 1NNN
	OpCall       // 2NNN
	OpSeByte     // 3XNN
	OpSneByte    // 4XNN
	OpSeReg      // 5XY0
	OpLdByte     // 6XNN
	OpAddByte    // 7XNN
	OpLdReg      // 8XY0
	OpOr         // 8XY1
	OpAnd        // 8XY2
	OpXor        // 8XY3
	OpAddReg     // 8XY4
	OpSub        // 8XY5
	OpShr        // 8XY6
	OpSubn       // 8XY7
	OpShl        // 8XYE
	OpSneReg     // 9XY0
	OpLdI        // ANNN
	OpJpV0       // BNNN
	OpRnd        // CXNN
	OpDrw        // DXYN
	OpSkp        // EX9E
	OpSknp       // EXA1
	OpLdVxDt     // FX07
	OpLdVxK      // FX0A
	OpLdDtVx     // FX15
	OpLdStVx     // FX18
	OpAddI       // FX1E
	OpLdF        // FX29
	OpLdB        // FX33
	OpLdIVx      // FX55
	OpLdVxI      // FX65
)

// Instruction is a decoded 16-bit instruction word.
type Instruction struct {
	Op  Op
	Raw uint16

	X, Y byte
	N    byte
	NN   byte
	NNN  uint16
}

// Decode splits the word into its operand fields and identifies the instruction.
// Encodings outside the canonical set decode to OpUnknown.
func Decode(opCode uint16) Instruction {
	ins := Instruction{
		Raw: opCode,
		X:   byte((opCode & 0x0F00) >> 8),
		Y:   byte((opCode & 0x00F0) >> 4),
		N:   byte(opCode & 0x000F),
		NN:  byte(opCode & 0x00FF),
		NNN: opCode & 0x0FFF,
	}
	ins.Op = decodeOp(opCode, ins.N, ins.NN)

	return ins
}

func decodeOp(opCode uint16, n, nn byte) Op {
	switch opCode & 0xF000 {
	case 0x0000:
		switch opCode {
		case 0x00E0:
			return OpCls
		case 0x00EE:
			return OpRet
		}
	case 0x1000:
		return OpJp
	case 0x2000:
		return OpCall
	case 0x3000:
		return OpSeByte
	case 0x4000:
		return OpSneByte
	case 0x5000:
		if n == 0x0 {
			return OpSeReg
		}
	case 0x6000:
		return OpLdByte
	case 0x7000:
		return OpAddByte
	case 0x8000:
		switch n {
		case 0x0:
			return OpLdReg
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddReg
		case 0x5:
			return OpSub
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubn
		case 0xE:
			return OpShl
		}
	case 0x9000:
		if n == 0x0 {
			return OpSneReg
		}
	case 0xA000:
		return OpLdI
	case 0xB000:
		return OpJpV0
	case 0xC000:
		return OpRnd
	case 0xD000:
		return OpDrw
	case 0xE000:
		switch nn {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
	case 0xF000:
		switch nn {
		case 0x07:
			return OpLdVxDt
		case 0x0A:
			return OpLdVxK
		case 0x15:
			return OpLdDtVx
		case 0x18:
			return OpLdStVx
		case 0x1E:
			return OpAddI
		case 0x29:
			return OpLdF
		case 0x33:
			return OpLdB
		case 0x55:
			return OpLdIVx
		case 0x65:
			return OpLdVxI
		}
	}

	return OpUnknown
}

var mnemonics = [...]string{
	OpUnknown: "???",
	OpCls:     "CLS",
	OpRet:     "RET",
	OpJp:      "JP",
	OpCall:    "CALL",
	OpSeByte:  "SE",
	OpSneByte: "SNE",
	OpSeReg:   "SE",
	OpLdByte:  "LD",
	OpAddByte: "ADD",
	OpLdReg:   "LD",
	OpOr:      "OR",
	OpAnd:     "AND",
	OpXor:     "XOR",
	OpAddReg:  "ADD",
	OpSub:     "SUB",
	OpShr:     "SHR",
	OpSubn:    "SUBN",
	OpShl:     "SHL",
	OpSneReg:  "SNE",
	OpLdI:     "LD",
	OpJpV0:    "JP",
	OpRnd:     "RND",
	OpDrw:     "DRW",
	OpSkp:     "SKP",
	OpSknp:    "SKNP",
	OpLdVxDt:  "LD",
	OpLdVxK:   "LD",
	OpLdDtVx:  "LD",
	OpLdStVx:  "LD",
	OpAddI:    "ADD",
	OpLdF:     "LD",
	OpLdB:     "LD",
	OpLdIVx:   "LD",
	OpLdVxI:   "LD",
}

func (op Op) Mnemonic() string {
	if int(op) < len(mnemonics) {
		return mnemonics[op]
	}

	return mnemonics[OpUnknown]
}

// String renders the instruction in the usual assembler syntax.
func (ins Instruction) String() string {
	m := ins.Op.Mnemonic()

	switch ins.Op {
	case OpCls, OpRet:
		return m
	case OpJp, OpCall:
		return fmt.Sprintf("%s 0x%03X", m, ins.NNN)
	case OpSeByte, OpSneByte, OpLdByte, OpAddByte, OpRnd:
		return fmt.Sprintf("%s V%X, 0x%02X", m, ins.X, ins.NN)
	case OpSeReg, OpSneReg, OpLdReg, OpOr, OpAnd, OpXor, OpAddReg, OpSub, OpShr, OpSubn, OpShl:
		return fmt.Sprintf("%s V%X, V%X", m, ins.X, ins.Y)
	case OpLdI:
		return fmt.Sprintf("%s I, 0x%03X", m, ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("%s V0, 0x%03X", m, ins.NNN)
	case OpDrw:
		return fmt.Sprintf("%s V%X, V%X, %d", m, ins.X, ins.Y, ins.N)
	case OpSkp, OpSknp:
		return fmt.Sprintf("%s V%X", m, ins.X)
	case OpLdVxDt:
		return fmt.Sprintf("%s V%X, DT", m, ins.X)
	case OpLdVxK:
		return fmt.Sprintf("%s V%X, K", m, ins.X)
	case OpLdDtVx:
		return fmt.Sprintf("%s DT, V%X", m, ins.X)
	case OpLdStVx:
		return fmt.Sprintf("%s ST, V%X", m, ins.X)
	case OpAddI:
		return fmt.Sprintf("%s I, V%X", m, ins.X)
	case OpLdF:
		return fmt.Sprintf("%s F, V%X", m, ins.X)
	case OpLdB:
		return fmt.Sprintf("%s B, V%X", m, ins.X)
	case OpLdIVx:
		return fmt.Sprintf("%s [I], V%X", m, ins.X)
	case OpLdVxI:
		return fmt.Sprintf("%s V%X, [I]", m, ins.X)
	}

	return fmt.Sprintf("%s %04X", m, ins.Raw)
}

// DisassembledLine is one entry of a Disassemble listing.
type DisassembledLine struct {
	Addr        uint16
	Instruction Instruction
}

// Disassemble decodes count instructions starting at from. Addresses wrap at 4KB.
func Disassemble(mem *Memory, from uint16, count int) []DisassembledLine {
	lines := make([]DisassembledLine, 0, count)
	addr := from & AddressMask
	for i := 0; i < count; i++ {
		word := uint16(mem[addr])<<8 | uint16(mem[(addr+1)&AddressMask])
		lines = append(lines, DisassembledLine{Addr: addr, Instruction: Decode(word)})
		addr = (addr + 2) & AddressMask
	}

	return lines
}
