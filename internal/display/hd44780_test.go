package display

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type op struct {
	data bool
	b    byte
}

type fakeBus struct {
	ops  []op
	fail bool
}

func (f *fakeBus) Command(b byte) error {
	if f.fail {
		return errors.New("bus stuck")
	}
	f.ops = append(f.ops, op{false, b})
	return nil
}

func (f *fakeBus) Data(b byte) error {
	if f.fail {
		return errors.New("bus stuck")
	}
	f.ops = append(f.ops, op{true, b})
	return nil
}

func (f *fakeBus) text() string {
	var s []byte
	for _, o := range f.ops {
		if o.data {
			s = append(s, o.b)
		}
	}
	return string(s)
}

func (f *fakeBus) commands() []byte {
	var c []byte
	for _, o := range f.ops {
		if !o.data {
			c = append(c, o.b)
		}
	}
	return c
}

func TestShowSequence(t *testing.T) {
	bus := &fakeBus{}
	d := NewHD44780(bus)

	require.NoError(t, d.Show("AB", "cd"))

	want := []op{
		{false, 0x38}, {false, 0x0C}, {false, 0xC0}, {false, 0x38}, {false, 0x38},
		{true, 'A'}, {true, 'B'},
		{false, 0x80},
		{true, 'c'}, {true, 'd'},
	}
	assert.Equal(t, want, bus.ops)
}

func TestPromptAndEcho(t *testing.T) {
	bus := &fakeBus{}
	d := NewHD44780(bus)
	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }

	require.NoError(t, d.Prompt(" Enter OTP"))
	require.NoError(t, d.Echo('4'))
	require.NoError(t, d.Echo('2'))

	assert.Equal(t, []byte{CmdClear, CmdLineOne, CmdLineTwo}, bus.commands())
	assert.Equal(t, " Enter OTP42", bus.text())
	assert.Equal(t, []time.Duration{time.Millisecond}, slept)
}

func TestShowPropagatesBusError(t *testing.T) {
	d := NewHD44780(&fakeBus{fail: true})
	assert.Error(t, d.Show("x", "y"))
	assert.Error(t, d.Echo('1'))
}
