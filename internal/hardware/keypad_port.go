package hardware

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"otp-lock/internal/keypad"
)

// ErrPortClosed is returned when the port lines are not requested.
var ErrPortClosed = errors.New("keypad port not open")

// portLine is the subset of *gpiocdev.Line the scan port needs.
type portLine interface {
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Value() (int, error)
	Close() error
}

// KeypadPort presents seven GPIO lines as bits 1..7 of the keypad port.
// Bit 0 belongs to the request line, which idles high, and always reads 1.
type KeypadPort struct {
	lines [KeypadLineCount]portLine
	mu    sync.Mutex
}

// open requests the port lines. The port is usable only after open succeeds.
func (p *KeypadPort) open(chip *gpiocdev.Chip, offsets [KeypadLineCount]int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, offset := range offsets {
		line, err := chip.RequestLine(offset, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			p.closeLines()
			return fmt.Errorf("failed to request keypad line %d: %w", offset, err)
		}
		p.lines[i] = line
	}
	return nil
}

// columnBit reports whether port bit (1..7) carries a column.
func columnBit(bit int) bool {
	return bit >= 1 && bit <= 3
}

// SetPhase drives the opposite half of the matrix low and pulls up the half
// being read.
func (p *KeypadPort) SetPhase(phase keypad.Phase) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lines[0] == nil {
		return ErrPortClosed
	}

	for i, line := range p.lines {
		bit := i + 1
		drive := columnBit(bit) == (phase == keypad.PhaseRow)
		var err error
		if drive {
			err = line.Reconfigure(gpiocdev.AsOutput(0))
		} else {
			err = line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp)
		}
		if err != nil {
			return fmt.Errorf("failed to reconfigure port bit %d: %w", bit, err)
		}
	}
	return nil
}

func (p *KeypadPort) Read() (uint8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lines[0] == nil {
		return 0, ErrPortClosed
	}

	value := uint8(0x01)
	for i, line := range p.lines {
		v, err := line.Value()
		if err != nil {
			return 0, fmt.Errorf("failed to read port bit %d: %w", i+1, err)
		}
		if v != 0 {
			value |= 1 << uint(i+1)
		}
	}
	return value, nil
}

func (p *KeypadPort) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLines()
}

func (p *KeypadPort) closeLines() {
	for i, line := range p.lines {
		if line != nil {
			line.Close()
			p.lines[i] = nil
		}
	}
}
