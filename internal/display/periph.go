package display

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// StrobeDelay is how long EN is held high for each transfer.
const StrobeDelay = 5 * time.Millisecond

// Pins names the controller lines as known to gpioreg (e.g. "GPIO5").
type Pins struct {
	RS   string
	RW   string
	EN   string
	Data [8]string // D0..D7
}

// PinBus drives the controller's 8-bit parallel interface over GPIO pins.
type PinBus struct {
	rs, rw, en gpio.PinOut
	data       [8]gpio.PinOut
	sleep      func(time.Duration)
}

// OpenPinBus initializes the periph host and resolves every pin by name.
func OpenPinBus(pins Pins) (*PinBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	lookup := func(name string) (gpio.PinOut, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("unknown display pin %q", name)
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("failed to drive display pin %s: %w", name, err)
		}
		return p, nil
	}

	b := &PinBus{sleep: time.Sleep}
	var err error
	if b.rs, err = lookup(pins.RS); err != nil {
		return nil, err
	}
	if b.rw, err = lookup(pins.RW); err != nil {
		return nil, err
	}
	if b.en, err = lookup(pins.EN); err != nil {
		return nil, err
	}
	for i, name := range pins.Data {
		if b.data[i], err = lookup(name); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *PinBus) Command(v byte) error {
	return b.transfer(gpio.Low, v)
}

func (b *PinBus) Data(v byte) error {
	return b.transfer(gpio.High, v)
}

// transfer selects the register, raises EN, presents v on D0..D7, holds for
// StrobeDelay and drops EN so the controller latches the byte.
func (b *PinBus) transfer(rs gpio.Level, v byte) error {
	if err := b.rs.Out(rs); err != nil {
		return err
	}
	if err := b.rw.Out(gpio.Low); err != nil {
		return err
	}
	if err := b.en.Out(gpio.High); err != nil {
		return err
	}
	for i, p := range b.data {
		if err := p.Out(gpio.Level(v&(1<<uint(i)) != 0)); err != nil {
			return err
		}
	}
	b.sleep(StrobeDelay)
	return b.en.Out(gpio.Low)
}
