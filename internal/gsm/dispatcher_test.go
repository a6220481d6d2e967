package gsm

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"otp-lock/internal/logger"
	"otp-lock/internal/otp"
)

type recordingPort struct {
	writes [][]byte
	failOn int
}

func (p *recordingPort) Write(b []byte) (int, error) {
	p.writes = append(p.writes, append([]byte(nil), b...))
	if p.failOn > 0 && len(p.writes) == p.failOn {
		return 0, errors.New("tx stalled")
	}
	return len(b), nil
}

func newTestDispatcher(port *recordingPort) (*Dispatcher, *[]time.Duration) {
	d := NewDispatcher(port, "5550100", CommandDelay, logger.NewLogger(nil, logger.LogLevelNone))
	var slept []time.Duration
	d.sleep = func(dur time.Duration) { slept = append(slept, dur) }
	return d, &slept
}

func TestSendSequence(t *testing.T) {
	port := &recordingPort{}
	d, slept := newTestDispatcher(port)

	d.Send(context.Background(), otp.FromNumber(4821))

	want := [][]byte{
		[]byte("AT\r\n"),
		[]byte("AT+CMGF=1\r\n"),
		[]byte("AT+CMGS=\"5550100\"\r\n"),
		[]byte("The OTP is 1284"),
		[]byte("\r\n"),
		{26},
	}
	assert.Equal(t, want, port.writes)
	assert.Equal(t, []time.Duration{
		CommandDelay, CommandDelay, CommandDelay, CommandDelay, CommandDelay,
	}, *slept)
}

func TestSendContinuesAfterWriteError(t *testing.T) {
	port := &recordingPort{failOn: 2}
	d, slept := newTestDispatcher(port)

	d.Send(context.Background(), otp.ParseCode("0000"))

	assert.Len(t, port.writes, 6)
	assert.Len(t, *slept, 5)
	assert.True(t, bytes.HasSuffix(port.writes[3], []byte("0000")))
}

func TestSendStopsOnCancelledContext(t *testing.T) {
	port := &recordingPort{}
	d, _ := newTestDispatcher(port)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Send(ctx, otp.ParseCode("1234"))

	assert.Empty(t, port.writes)
}
