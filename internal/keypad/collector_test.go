package keypad

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otp-lock/internal/logger"
)

// scriptPort replays one queue of values per phase. An exhausted queue reads
// as idle.
type scriptPort struct {
	phase  Phase
	reads  map[Phase][]uint8
	phases []Phase
	err    error
}

func newScriptPort() *scriptPort {
	return &scriptPort{reads: make(map[Phase][]uint8)}
}

// press queues idle polls followed by the pressed values for one key.
func (p *scriptPort) press(row, col uint8, idlePolls int) {
	for i := 0; i < idlePolls; i++ {
		p.reads[PhaseRow] = append(p.reads[PhaseRow], PhaseRow.Idle())
	}
	p.reads[PhaseRow] = append(p.reads[PhaseRow], row)
	p.reads[PhaseColumn] = append(p.reads[PhaseColumn], col)
}

func (p *scriptPort) SetPhase(phase Phase) error {
	p.phase = phase
	p.phases = append(p.phases, phase)
	return nil
}

func (p *scriptPort) Read() (uint8, error) {
	if p.err != nil {
		return 0, p.err
	}
	q := p.reads[p.phase]
	if len(q) == 0 {
		return p.phase.Idle(), nil
	}
	p.reads[p.phase] = q[1:]
	return q[0], nil
}

func newTestCollector(port Port, timing Timing) (*Collector, *[]time.Duration) {
	c := NewCollector(port, timing, logger.NewLogger(nil, logger.LogLevelNone))
	var slept []time.Duration
	c.sleep = func(d time.Duration) { slept = append(slept, d) }
	return c, &slept
}

func TestDecodeTables(t *testing.T) {
	for value, want := range map[uint8]int{0xE1: 0, 0xD1: 1, 0xB1: 2, 0x71: 3} {
		row, err := DecodeRow(value)
		require.NoError(t, err)
		assert.Equal(t, want, row)
	}
	for value, want := range map[uint8]int{0x07: 0, 0x0B: 1, 0x0D: 2} {
		col, err := DecodeColumn(value)
		require.NoError(t, err)
		assert.Equal(t, want, col)
	}

	_, err := DecodeRow(0x61)
	assert.ErrorIs(t, err, ErrUnrecognizedScanPattern)
	_, err = DecodeColumn(0x0E)
	assert.ErrorIs(t, err, ErrUnrecognizedScanPattern)
}

func TestCollectDecodesKeyTable(t *testing.T) {
	port := newScriptPort()
	port.press(0xE1, 0x07, 3) // (0,0) '1'
	port.press(0xD1, 0x0B, 0) // (1,1) '5'
	port.press(0xB1, 0x0D, 1) // (2,2) '9'
	port.press(0x71, 0x07, 0) // (3,0) '*'

	c, _ := newTestCollector(port, DefaultTiming)
	var echoed []byte
	scan := &ScanState{}
	code, err := c.Collect(context.Background(), scan, func(i int, ch byte) {
		assert.Equal(t, len(echoed), i)
		echoed = append(echoed, ch)
	})

	require.NoError(t, err)
	assert.Equal(t, "159*", code.String())
	assert.Equal(t, "159*", string(echoed))
	assert.Equal(t, 4, scan.Index)
}

func TestReadKeyTimingAndPhases(t *testing.T) {
	port := newScriptPort()
	port.press(0xB1, 0x0B, 2)

	c, slept := newTestCollector(port, DefaultTiming)
	ch, err := c.ReadKey(context.Background(), &ScanState{})
	require.NoError(t, err)
	assert.Equal(t, byte('8'), ch)

	assert.Equal(t, []time.Duration{
		time.Millisecond, time.Millisecond, // two idle polls
		DefaultTiming.RowDebounce,
		DefaultTiming.ColumnDebounce,
	}, *slept)
	assert.Equal(t, []Phase{PhaseRow, PhaseColumn, PhaseColumn}, port.phases)
}

func TestUnrecognizedPatternKeepsPreviousPosition(t *testing.T) {
	port := newScriptPort()
	port.press(0xD1, 0x0D, 0) // (1,2) '6'
	port.press(0x51, 0x0B, 0) // two rows at once: row stays 1, column 1 -> '5'
	port.press(0x71, 0x03, 0) // row 3, bad column stays 1 -> '0'

	c, _ := newTestCollector(port, DefaultTiming)
	scan := &ScanState{}

	var got []byte
	for i := 0; i < 3; i++ {
		ch, err := c.ReadKey(context.Background(), scan)
		require.NoError(t, err)
		got = append(got, ch)
	}
	assert.Equal(t, "650", string(got))
}

func TestStaleRowFromZeroedScanState(t *testing.T) {
	port := newScriptPort()
	port.press(0xF0, 0x0D, 0)

	c, _ := newTestCollector(port, DefaultTiming)
	ch, err := c.ReadKey(context.Background(), &ScanState{})
	require.NoError(t, err)
	assert.Equal(t, byte('3'), ch)
}

func TestKeyTimeout(t *testing.T) {
	port := newScriptPort()
	timing := DefaultTiming
	timing.KeyTimeout = 10 * time.Millisecond

	c, _ := newTestCollector(port, timing)
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }
	c.sleep = func(d time.Duration) { now = now.Add(d) }

	_, err := c.Collect(context.Background(), &ScanState{}, nil)
	assert.ErrorIs(t, err, ErrKeyTimeout)
}

func TestCancelledContextStopsWait(t *testing.T) {
	port := newScriptPort()
	c, _ := newTestCollector(port, DefaultTiming)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ReadKey(ctx, &ScanState{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPortReadError(t *testing.T) {
	port := newScriptPort()
	port.err = errors.New("line closed")
	c, _ := newTestCollector(port, DefaultTiming)

	_, err := c.Collect(context.Background(), &ScanState{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line closed")
}
