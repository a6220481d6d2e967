package otp

import (
	"math/rand"
)

// Length is the number of characters in a passcode.
const Length = 4

// RandMax is the largest value a single draw can return (15-bit generator).
const RandMax = 32767

// Code holds the ASCII digits of a passcode in transmission order.
type Code [Length]byte

func (c Code) String() string {
	return string(c[:])
}

// Seed initializes the pseudo-random generator.
type Seed uint32

// SeedSource samples the current value of a free-running counter.
type SeedSource interface {
	Sample() Seed
}

// SeedFunc adapts a plain function to SeedSource.
type SeedFunc func() Seed

func (f SeedFunc) Sample() Seed { return f() }

// Rand is a seeded generator producing one value in [0, RandMax] per Draw.
type Rand interface {
	Draw() int
}

// RandFactory builds a generator for the given seed.
type RandFactory func(seed Seed) Rand

type mathRand struct {
	r *rand.Rand
}

func (m *mathRand) Draw() int {
	return m.r.Intn(RandMax + 1)
}

// NewMathRand returns the default generator. It is deterministic for a seed.
func NewMathRand(seed Seed) Rand {
	return &mathRand{r: rand.New(rand.NewSource(int64(seed)))}
}

// Generator turns a seeded draw into a passcode.
type Generator struct {
	newRand RandFactory
	rng     Rand
}

// NewGenerator creates a generator. A nil factory selects NewMathRand.
func NewGenerator(factory RandFactory) *Generator {
	if factory == nil {
		factory = NewMathRand
	}
	return &Generator{newRand: factory}
}

// Reseed replaces the underlying generator.
func (g *Generator) Reseed(seed Seed) {
	g.rng = g.newRand(seed)
}

// Next draws the next code from the current generator, seeding with 0 if
// Reseed was never called.
func (g *Generator) Next() Code {
	if g.rng == nil {
		g.Reseed(0)
	}
	return FromNumber(g.rng.Draw()%9999 + 1)
}

// Generate reseeds with seed and draws one code.
func (g *Generator) Generate(seed Seed) Code {
	g.Reseed(seed)
	return g.Next()
}

// FromNumber encodes the four low decimal digits of n least significant
// first, so 4821 becomes "1284" and 7 becomes "7000".
//
// The reversed order is what gets transmitted, displayed and compared. It
// reads backwards relative to n; kept as is since both ends agree on it.
func FromNumber(n int) Code {
	var c Code
	for i := 0; i < Length; i++ {
		c[i] = digit(n % 10)
		n /= 10
	}
	return c
}

func digit(d int) byte {
	if d < 0 || d > 9 {
		return '0'
	}
	return byte('0' + d)
}
