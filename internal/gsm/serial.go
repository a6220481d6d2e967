package gsm

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the modem's fixed line speed.
const DefaultBaudRate = 9600

// OpenPort opens the modem tty at baud 8N1.
func OpenPort(device string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}
	return port, nil
}
