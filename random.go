package chip8

import (
	"crypto/rand"
	mrand "math/rand/v2"
)

// RandomSource feeds the RND instruction
type RandomSource interface {
	Byte() byte
}

// CryptoRandom draws bytes from the operating system
type CryptoRandom struct{}

func (CryptoRandom) Byte() byte {
	buff := [1]byte{}
	if _, err := rand.Read(buff[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}

	return buff[0]
}

// SeededRandom is a reproducible source, two sources with the same seed
// produce the same bytes.
type SeededRandom struct {
	rng *mrand.Rand
}

func NewSeededRandom(seed uint64) *SeededRandom {
	return &SeededRandom{
		rng: mrand.New(mrand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

func (r *SeededRandom) Byte() byte {
	return byte(r.rng.UintN(256))
}

// FixedRandom always returns the same byte
type FixedRandom byte

func (r FixedRandom) Byte() byte {
	return byte(r)
}
