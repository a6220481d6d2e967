package hardware

import (
	"golang.org/x/sys/unix"

	"otp-lock/internal/otp"
)

// counterTickNanos is one tick of an 8-bit timer clocked at Fosc/4 with a
// 1:4 prescaler on a 20 MHz oscillator.
const counterTickNanos = 800

// FreeRunningCounter emulates the 8-bit timer used to seed the passcode
// generator. It wraps every 256 ticks, so only 256 seeds exist.
type FreeRunningCounter struct {
	clock func() (int64, error)
}

func NewFreeRunningCounter() *FreeRunningCounter {
	return &FreeRunningCounter{clock: monotonicNanos}
}

func monotonicNanos() (int64, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, err
	}
	return ts.Nano(), nil
}

// Sample returns the current counter value. A clock failure reads as 0.
func (c *FreeRunningCounter) Sample() otp.Seed {
	ns, err := c.clock()
	if err != nil {
		return 0
	}
	return otp.Seed((ns / counterTickNanos) & 0xFF)
}
