package chip8

// execute runs a decoded instruction. PC already points past it.
func (cpu *Cpu) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCls:
		// CLS :: Clear the display.
		cpu.Screen.Clear()

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := cpu.Stack.Pop()
		if err != nil {
			return err
		}
		cpu.Pc = addr

	case OpJp:
		// JP addr :: Jump to location nnn.
		cpu.Pc = ins.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := cpu.Stack.Push(cpu.Pc); err != nil {
			return err
		}
		cpu.Pc = ins.NNN

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if cpu.V[x] == ins.NN {
			cpu.skip()
		}

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if cpu.V[x] != ins.NN {
			cpu.skip()
		}

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if cpu.V[x] == cpu.V[y] {
			cpu.skip()
		}

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		cpu.V[x] = ins.NN

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk. VF is untouched.
		cpu.V[x] += ins.NN

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		cpu.V[x] = cpu.V[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		cpu.V[x] |= cpu.V[y]

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		cpu.V[x] &= cpu.V[y]

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		cpu.V[x] ^= cpu.V[y]

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(cpu.V[x]) + uint16(cpu.V[y])
		cpu.V[x] = byte(r & 0x00FF)
		cpu.V[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := cpu.V[x] >= cpu.V[y]
		cpu.V[x] = cpu.V[x] - cpu.V[y]
		cpu.V[0xF] = bool2byte(carry)

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		carry := cpu.V[x] & 0b00000001
		cpu.V[x] = cpu.V[x] >> 1
		cpu.V[0xF] = carry

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := cpu.V[y] >= cpu.V[x]
		cpu.V[x] = cpu.V[y] - cpu.V[x]
		cpu.V[0xF] = bool2byte(carry)

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		carry := (cpu.V[x] & 0b10000000) >> 7
		cpu.V[x] = cpu.V[x] << 1
		cpu.V[0xF] = carry

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if cpu.V[x] != cpu.V[y] {
			cpu.skip()
		}

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		cpu.I = ins.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0.
		cpu.Pc = (uint16(cpu.V[0]) + ins.NNN) & AddressMask

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		cpu.V[x] = cpu.Random.Byte() & ins.NN

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		// Sprites are XORed onto the existing screen and wrap around its edges.
		rows := make([]byte, ins.N)
		for i := range rows {
			rows[i] = cpu.load(cpu.I + uint16(i))
		}
		collided := cpu.Screen.DrawSprite(int(cpu.V[x]), int(cpu.V[y]), rows)
		cpu.V[0xF] = bool2byte(collided)

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		if cpu.Keyboard.IsPressed(cpu.V[x]) {
			cpu.skip()
		}

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		if !cpu.Keyboard.IsPressed(cpu.V[x]) {
			cpu.skip()
		}

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		cpu.V[x] = cpu.Dt

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		cpu.waitingForKey = true
		cpu.keyDstRegister = x
		cpu.keysAtWait = snapshotKeys(cpu.Keyboard)

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		cpu.Dt = cpu.V[x]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		cpu.St = cpu.V[x]

	case OpAddI:
		// ADD I, Vx :: Set I = I + Vx.
		cpu.I = (cpu.I + uint16(cpu.V[x])) & AddressMask

	case OpLdF:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		cpu.I = GlyphAddress(cpu.V[x])

	case OpLdB:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		v := cpu.V[x]
		cpu.store(cpu.I+0, v/100)
		cpu.store(cpu.I+1, (v/10)%10)
		cpu.store(cpu.I+2, v%10)

	case OpLdIVx:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			cpu.store(cpu.I+i, cpu.V[i])
		}

	case OpLdVxI:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			cpu.V[i] = cpu.load(cpu.I + i)
		}

	case OpUnknown:
		return UnknownInstructionError{
			OpCode: ins.Raw,
			Pc:     (cpu.Pc - 2) & AddressMask,
		}

	default:
		panic("unhandled op " + ins.Op.Mnemonic())
	}

	return nil
}

func (cpu *Cpu) skip() {
	cpu.Pc = (cpu.Pc + 2) & AddressMask
}
