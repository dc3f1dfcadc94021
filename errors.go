package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrCpuIsNotBooted = errors.New("the CPU has not been booted properly")
	ErrHalted         = errors.New("the CPU is halted")

	ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
	ErrStackOverflow  = errors.New("stack overflow: try to push to a full stack")

	ErrProgramTooLarge    = errors.New("the program does not fit into memory")
	ErrOutOfBounds        = errors.New("memory access out of bounds")
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrQuit is returned by a Keyboard when its source asks the machine to stop.
	ErrQuit = errors.New("quit requested")
)

type OutOfBoundsError struct {
	Addr uint16
}

func (err OutOfBoundsError) Error() string {
	return fmt.Sprintf("memory access out of bounds at %#04x", err.Addr)
}

func (err OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

type UnknownInstructionError struct {
	OpCode uint16
	Pc     uint16
}

func (err UnknownInstructionError) Error() string {
	return fmt.Sprintf("unknown opcode=%04X at PC=%#03x", err.OpCode, err.Pc)
}

func (err UnknownInstructionError) Unwrap() error {
	return ErrUnknownInstruction
}

// LoadError reports a program that could not be read or placed into memory.
// No cycle runs after a LoadError.
type LoadError struct {
	Path string
	Err  error
}

func (err *LoadError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("loading program: %v", err.Err)
	}
	return fmt.Sprintf("loading program %q: %v", err.Path, err.Err)
}

func (err *LoadError) Unwrap() error {
	return err.Err
}
