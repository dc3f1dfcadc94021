package chip8

const StackDepth = 16

// Stack holds the return addresses of the subroutine calls in progress.
// Sp counts the occupied slots.
type Stack struct {
	Data [StackDepth]uint16
	Sp   byte
}

func (s *Stack) Push(addr uint16) error {
	if s.Full() {
		return ErrStackOverflow
	}

	s.Data[s.Sp] = addr
	s.Sp++

	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.Empty() {
		return 0, ErrStackUnderflow
	}

	s.Sp--

	return s.Data[s.Sp], nil
}

func (s *Stack) Peek() (addr uint16, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[s.Sp-1], true
}

func (s *Stack) Empty() bool {
	return s.Sp == 0
}

func (s *Stack) Full() bool {
	return s.Sp == StackDepth
}

func (s *Stack) Reset() {
	*s = Stack{}
}
