package gsm

import (
	"context"
	"io"
	"time"

	"otp-lock/internal/logger"
	"otp-lock/internal/otp"
)

const (
	// CommandDelay is the fixed wait after each step of the send sequence.
	CommandDelay = 1000 * time.Millisecond

	MessagePrefix = "The OTP is "

	ctrlZ = 26
)

// Dispatcher sends passcodes as SMS through an AT-command modem. It never
// reads from the modem: each step is followed by a fixed delay instead of
// waiting for a reply.
type Dispatcher struct {
	port        io.Writer
	destination string
	delay       time.Duration
	logger      *logger.Logger
	sleep       func(time.Duration)
}

func NewDispatcher(port io.Writer, destination string, delay time.Duration, l *logger.Logger) *Dispatcher {
	return &Dispatcher{
		port:        port,
		destination: destination,
		delay:       delay,
		logger:      l.WithTag("GSM"),
		sleep:       time.Sleep,
	}
}

// Send runs the full sequence. Write errors are logged and the remaining
// steps still run with unchanged timing.
func (d *Dispatcher) Send(ctx context.Context, code otp.Code) {
	steps := []struct {
		name string
		data []byte
		wait bool
	}{
		{"probe", []byte("AT\r\n"), true},
		{"text mode", []byte("AT+CMGF=1\r\n"), true},
		{"recipient", []byte("AT+CMGS=\"" + d.destination + "\"\r\n"), true},
		{"body", append([]byte(MessagePrefix), code[:]...), true},
		{"terminator", []byte("\r\n"), true},
		{"submit", []byte{ctrlZ}, false},
	}

	d.logger.Infof("Sending passcode to %s", d.destination)
	for _, step := range steps {
		if ctx.Err() != nil {
			d.logger.Warnf("Send interrupted before %s: %v", step.name, ctx.Err())
			return
		}
		if _, err := d.port.Write(step.data); err != nil {
			d.logger.Warnf("Failed to write %s: %v", step.name, err)
		}
		if step.wait {
			d.sleep(d.delay)
		}
	}
	d.logger.Debugf("Passcode message submitted")
}
