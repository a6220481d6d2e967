package keypad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"otp-lock/internal/logger"
	"otp-lock/internal/otp"
)

// Port is the shared digital port the matrix is multiplexed over.
type Port interface {
	// SetPhase reconfigures line directions and drives the idle pattern.
	SetPhase(phase Phase) error
	// Read returns the aggregate port value.
	Read() (uint8, error)
}

// ErrKeyTimeout is returned when a key wait exceeds Timing.KeyTimeout.
var ErrKeyTimeout = errors.New("timed out waiting for key press")

// Timing holds the scan delays. A zero KeyTimeout waits forever.
type Timing struct {
	RowDebounce    time.Duration
	ColumnDebounce time.Duration
	EchoDelay      time.Duration
	Poll           time.Duration
	KeyTimeout     time.Duration
}

// DefaultTiming matches the reference keypad hardware.
var DefaultTiming = Timing{
	RowDebounce:    1 * time.Millisecond,
	ColumnDebounce: 2 * time.Millisecond,
	EchoDelay:      250 * time.Millisecond,
	Poll:           1 * time.Millisecond,
}

// ScanState is the scan position carried across key reads of one cycle.
// Row and Column keep their last decoded value when a pattern is not
// recognized.
type ScanState struct {
	Row    int
	Column int
	Index  int
}

// Collector reads passcodes from the matrix keypad.
type Collector struct {
	port   Port
	timing Timing
	logger *logger.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

func NewCollector(port Port, timing Timing, l *logger.Logger) *Collector {
	return &Collector{
		port:   port,
		timing: timing,
		logger: l.WithTag("Keypad"),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// Collect reads exactly otp.Length keys. After each key it waits the echo
// delay and passes the character to echo, which may be nil.
func (c *Collector) Collect(ctx context.Context, scan *ScanState, echo func(index int, ch byte)) (otp.Code, error) {
	var code otp.Code
	for scan.Index = 0; scan.Index < otp.Length; scan.Index++ {
		ch, err := c.ReadKey(ctx, scan)
		if err != nil {
			return code, fmt.Errorf("key %d: %w", scan.Index, err)
		}
		code[scan.Index] = ch
		c.sleep(c.timing.EchoDelay)
		if echo != nil {
			echo(scan.Index, ch)
		}
	}
	return code, nil
}

// ReadKey blocks until one key has been pressed and returns its character.
func (c *Collector) ReadKey(ctx context.Context, scan *ScanState) (byte, error) {
	value, err := c.awaitPress(ctx, PhaseRow)
	if err != nil {
		return 0, err
	}
	if row, err := DecodeRow(value); err != nil {
		c.logger.Warnf("%v, keeping row %d", err, scan.Row)
	} else {
		scan.Row = row
	}
	c.sleep(c.timing.RowDebounce)

	value, err = c.awaitPress(ctx, PhaseColumn)
	if err != nil {
		return 0, err
	}
	if col, err := DecodeColumn(value); err != nil {
		c.logger.Warnf("%v, keeping column %d", err, scan.Column)
	} else {
		scan.Column = col
	}
	c.sleep(c.timing.ColumnDebounce)

	if err := c.port.SetPhase(PhaseColumn); err != nil {
		c.logger.Warnf("Failed to reset port: %v", err)
	}

	ch := Keys[scan.Row][scan.Column]
	c.logger.Debugf("Key (%d,%d) -> %c", scan.Row, scan.Column, ch)
	return ch, nil
}

// awaitPress drives the idle pattern for phase and polls until the port
// reads anything else.
func (c *Collector) awaitPress(ctx context.Context, phase Phase) (uint8, error) {
	if err := c.port.SetPhase(phase); err != nil {
		return 0, fmt.Errorf("set %s phase: %w", phase, err)
	}

	idle := phase.Idle()
	var deadline time.Time
	if c.timing.KeyTimeout > 0 {
		deadline = c.now().Add(c.timing.KeyTimeout)
	}

	for {
		value, err := c.port.Read()
		if err != nil {
			return 0, fmt.Errorf("read %s phase: %w", phase, err)
		}
		if value != idle {
			return value, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		if !deadline.IsZero() && !c.now().Before(deadline) {
			return 0, ErrKeyTimeout
		}
		c.sleep(c.timing.Poll)
	}
}
