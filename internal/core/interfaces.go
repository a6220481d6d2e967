package core

import (
	"context"

	"otp-lock/internal/hardware"
	"otp-lock/internal/keypad"
	"otp-lock/internal/messaging"
	"otp-lock/internal/otp"
	"otp-lock/internal/types"
)

// MessagingClient defines the interface for Redis messaging operations needed by LockSystem
type MessagingClient interface {
	SetCallbacks(callbacks messaging.Callbacks)
	Connect() error
	StartListening() error
	Close() error

	PublishLockState(state types.LockState) error
	PublishCycleOutcome(outcome types.CycleOutcome) error
}

// HardwareIO defines the interface for hardware I/O operations needed by LockSystem
type HardwareIO interface {
	Initialize() error
	Cleanup()

	ReadDigitalInput(channel string) (bool, error)
	WriteDigitalOutput(channel string, value bool) error
	SetInitialValue(name string, value bool)
	RegisterInputCallback(channel string, callback hardware.InputCallback)
}

// Display is the two-line character display.
type Display interface {
	Show(status, message string) error
	Prompt(text string) error
	Echo(ch byte) error
}

// Dispatcher delivers a code to the registered phone. Delivery is not
// confirmed.
type Dispatcher interface {
	Send(ctx context.Context, code otp.Code)
}

// Collector reads a full code from the keypad.
type Collector interface {
	Collect(ctx context.Context, scan *keypad.ScanState, echo func(index int, ch byte)) (otp.Code, error)
}

// Peripherals groups the cycle collaborators that are not GPIO outputs.
type Peripherals struct {
	Display    Display
	Dispatcher Dispatcher
	Collector  Collector
	Seeds      otp.SeedSource
	Generator  *otp.Generator // nil selects the math/rand generator
}
