package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct {
	value int
}

func (f fixedRand) Draw() int { return f.value }

func reversed(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func TestFromNumberLeastSignificantFirst(t *testing.T) {
	for n := 1; n <= 9998; n++ {
		want := reversed(padLeft(strconv.Itoa(n)))
		got := FromNumber(n).String()
		if got != want {
			t.Fatalf("FromNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func padLeft(s string) string {
	for len(s) < Length {
		s = "0" + s
	}
	return s
}

func TestFromNumberExamples(t *testing.T) {
	assert.Equal(t, "1284", FromNumber(4821).String())
	assert.Equal(t, "7000", FromNumber(7).String())
	assert.Equal(t, "9999", FromNumber(9999).String())
}

func TestGeneratorAppliesModuloAndOffset(t *testing.T) {
	var seen []Seed
	g := NewGenerator(func(seed Seed) Rand {
		seen = append(seen, seed)
		return fixedRand{value: 4820}
	})

	code := g.Generate(42)
	assert.Equal(t, "1284", code.String())
	require.Equal(t, []Seed{42}, seen)

	// 9999 wraps to 0, so the smallest number is drawn.
	g = NewGenerator(func(Seed) Rand { return fixedRand{value: 9999} })
	assert.Equal(t, "1000", g.Generate(1).String())
}

func TestGeneratorReseedsEveryCall(t *testing.T) {
	var seen []Seed
	g := NewGenerator(func(seed Seed) Rand {
		seen = append(seen, seed)
		return fixedRand{value: int(seed)}
	})

	g.Generate(3)
	g.Generate(200)
	assert.Equal(t, []Seed{3, 200}, seen)
}

func TestMathRandDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(nil).Generate(17)
	b := NewGenerator(nil).Generate(17)
	assert.Equal(t, a, b)

	for _, ch := range a {
		assert.True(t, ch >= '0' && ch <= '9', "non-digit %q in %q", ch, a)
	}
}

func TestMathRandRange(t *testing.T) {
	r := NewMathRand(5)
	for i := 0; i < 1000; i++ {
		v := r.Draw()
		require.GreaterOrEqual(t, v, 0)
		require.LessOrEqual(t, v, RandMax)
	}
}

func TestNextWithoutReseed(t *testing.T) {
	g := NewGenerator(func(seed Seed) Rand {
		return fixedRand{value: int(seed) + 10}
	})
	assert.Equal(t, "1100", g.Next().String())
}
