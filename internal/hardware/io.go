package hardware

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"otp-lock/internal/logger"
)

type InputCallback func(channel string, value bool) error

type LinuxHardwareIO struct {
	logger         *logger.Logger
	layout         Layout
	chip           *gpiocdev.Chip
	lines          map[string]*gpiocdev.Line
	request        *gpiocdev.Line
	keypad         *KeypadPort
	inputCallbacks map[string]InputCallback
	initialValues  map[string]bool // Initial values for outputs
	mu             sync.RWMutex
}

func NewLinuxHardwareIO(layout Layout, l *logger.Logger) *LinuxHardwareIO {
	return &LinuxHardwareIO{
		logger:         l.WithTag("HardwareIO"),
		layout:         layout,
		lines:          make(map[string]*gpiocdev.Line),
		inputCallbacks: make(map[string]InputCallback),
		initialValues:  make(map[string]bool),
		keypad:         &KeypadPort{},
	}
}

func (io *LinuxHardwareIO) SetInitialValue(name string, value bool) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.initialValues[name] = value
}

func (io *LinuxHardwareIO) Initialize() error {
	io.logger.Infof("Initializing hardware IO on %s", io.layout.Chip)

	chip, err := gpiocdev.NewChip(io.layout.Chip, gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return fmt.Errorf("failed to open GPIO chip %s: %w", io.layout.Chip, err)
	}
	io.chip = chip

	for name, offset := range io.layout.Outputs {
		io.mu.RLock()
		val := 0
		if value, exists := io.initialValues[name]; exists && value {
			val = 1
		}
		io.mu.RUnlock()

		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(val))
		if err != nil {
			return fmt.Errorf("failed to request GPIO line %d: %w", offset, err)
		}

		io.mu.Lock()
		io.lines[name] = line
		io.mu.Unlock()
		io.logger.Debugf("Configured DO %s: line=%d initial=%d", name, offset, val)
	}

	// The request line idles high under pull-up; both edges are reported.
	io.request, err = chip.RequestLine(io.layout.Request,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(io.handleEdge))
	if err != nil {
		return fmt.Errorf("failed to request line %d for %s: %w", io.layout.Request, ChannelRequest, err)
	}
	io.logger.Debugf("Configured DI %s: line=%d", ChannelRequest, io.layout.Request)

	if err := io.keypad.open(chip, io.layout.KeypadLines); err != nil {
		return err
	}
	io.logger.Debugf("Configured keypad port: lines=%v", io.layout.KeypadLines)

	return nil
}

func (io *LinuxHardwareIO) handleEdge(evt gpiocdev.LineEvent) {
	value := evt.Type == gpiocdev.LineEventRisingEdge
	io.logger.Debugf("Edge on %s: rising=%v seq=%d", ChannelRequest, value, evt.Seqno)

	io.mu.RLock()
	callback, exists := io.inputCallbacks[ChannelRequest]
	io.mu.RUnlock()

	if !exists {
		io.logger.Debugf("No callback registered for channel: %s", ChannelRequest)
		return
	}
	if err := callback(ChannelRequest, value); err != nil {
		io.logger.Debugf("Callback for %s: %v", ChannelRequest, err)
	}
}

func (io *LinuxHardwareIO) RegisterInputCallback(channel string, callback InputCallback) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.inputCallbacks[channel] = callback
	io.logger.Debugf("Registered callback for channel: %s", channel)
}

func (io *LinuxHardwareIO) ReadDigitalInput(channel string) (bool, error) {
	if channel != ChannelRequest {
		return false, fmt.Errorf("unknown input channel: %s", channel)
	}
	if io.request == nil {
		return false, fmt.Errorf("input %s not initialized", channel)
	}
	v, err := io.request.Value()
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", channel, err)
	}
	return v != 0, nil
}

func (io *LinuxHardwareIO) WriteDigitalOutput(channel string, value bool) error {
	io.mu.RLock()
	line, ok := io.lines[channel]
	io.mu.RUnlock()

	if !ok {
		return fmt.Errorf("unknown digital output channel: %s", channel)
	}

	val := 0
	if value {
		val = 1
	}

	if err := line.SetValue(val); err != nil {
		return fmt.Errorf("failed to set DO %s=%v: %w", channel, value, err)
	}

	io.logger.Debugf("Set DO %s=%v", channel, value)
	return nil
}

// KeypadPort returns the scan port. Reads fail with ErrPortClosed until
// Initialize has requested its lines.
func (io *LinuxHardwareIO) KeypadPort() *KeypadPort {
	return io.keypad
}

func (io *LinuxHardwareIO) Cleanup() {
	io.mu.Lock()
	defer io.mu.Unlock()

	io.logger.Infof("Cleaning up hardware resources")

	if io.request != nil {
		io.request.Close()
	}
	io.keypad.Close()
	for name, line := range io.lines {
		line.Close()
		io.logger.Debugf("Closed GPIO line for %s", name)
	}
	if io.chip != nil {
		io.chip.Close()
	}

	io.logger.Infof("Hardware cleanup complete")
}
