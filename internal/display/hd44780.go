// Package display drives a two-line HD44780 character LCD.
package display

import (
	"fmt"
	"sync"
	"time"
)

// HD44780 instruction bytes used by this controller.
const (
	CmdClear       = 0x01
	CmdDisplayOn   = 0x0C // display on, cursor off, blink off
	CmdFunctionSet = 0x38 // 8-bit bus, two lines, 5x8 font
	CmdLineOne     = 0x80
	CmdLineTwo     = 0xC0
)

// initSequence is replayed before every two-line message.
var initSequence = []byte{CmdFunctionSet, CmdDisplayOn, CmdLineTwo, CmdFunctionSet, CmdFunctionSet}

// Bus is the raw write primitive to the controller.
type Bus interface {
	Command(b byte) error
	Data(b byte) error
}

// HD44780 writes status screens through a Bus.
type HD44780 struct {
	bus   Bus
	mu    sync.Mutex
	sleep func(time.Duration)
}

func NewHD44780(bus Bus) *HD44780 {
	return &HD44780{bus: bus, sleep: time.Sleep}
}

// Show re-initializes the controller, writes status on line two and message
// on line one.
func (d *HD44780) Show(status, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, cmd := range initSequence {
		if err := d.bus.Command(cmd); err != nil {
			return fmt.Errorf("init 0x%02X: %w", cmd, err)
		}
	}
	if err := d.write(status); err != nil {
		return err
	}
	if err := d.bus.Command(CmdLineOne); err != nil {
		return fmt.Errorf("line one: %w", err)
	}
	return d.write(message)
}

// Prompt clears the screen, writes text on line one and leaves the cursor at
// the start of line two for echoed input.
func (d *HD44780) Prompt(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.bus.Command(CmdClear); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := d.bus.Command(CmdLineOne); err != nil {
		return fmt.Errorf("line one: %w", err)
	}
	if err := d.write(text); err != nil {
		return err
	}
	d.sleep(time.Millisecond)
	if err := d.bus.Command(CmdLineTwo); err != nil {
		return fmt.Errorf("line two: %w", err)
	}
	return nil
}

// Echo writes one character at the cursor.
func (d *HD44780) Echo(ch byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bus.Data(ch)
}

func (d *HD44780) write(text string) error {
	for i := 0; i < len(text); i++ {
		if err := d.bus.Data(text[i]); err != nil {
			return fmt.Errorf("write %q: %w", text, err)
		}
	}
	return nil
}
