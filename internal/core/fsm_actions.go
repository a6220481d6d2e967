package core

import (
	"context"
	"time"

	"github.com/librescoot/librefsm"

	"otp-lock/internal/fsm"
	"otp-lock/internal/otp"
	"otp-lock/internal/types"
)

// Ensure LockSystem implements fsm.Actions
var _ fsm.Actions = (*LockSystem)(nil)

// stateIDToLockState converts librefsm StateID to types.LockState
func stateIDToLockState(id librefsm.StateID) types.LockState {
	switch id {
	case fsm.StateLocked:
		return types.StateLocked
	case fsm.StateGenerating:
		return types.StateGenerating
	case fsm.StateDispatching:
		return types.StateDispatching
	case fsm.StateAwaitingInput:
		return types.StateAwaitingInput
	case fsm.StateVerifying:
		return types.StateVerifying
	case fsm.StateUnlocked:
		return types.StateUnlocked
	case fsm.StateFailed:
		return types.StateFailed
	default:
		return types.LockState(string(id))
	}
}

// initFSM initializes and starts the librefsm machine
func (s *LockSystem) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(s)
	machine, err := def.Build()
	if err != nil {
		return err
	}
	s.machine = machine

	s.machine.OnStateChange(func(from, to librefsm.StateID) {
		newState := stateIDToLockState(to)
		oldState := stateIDToLockState(from)

		s.mu.Lock()
		s.state = newState
		s.mu.Unlock()

		s.logger.Infof("State transition: %s -> %s", oldState, newState)

		// Publish the known new state; getCurrentState() here would
		// deadlock on the FSM mutex
		if err := s.redis.PublishLockState(newState); err != nil {
			s.logger.Warnf("Failed to publish state: %v", err)
		}
	})

	if err := s.machine.Start(ctx); err != nil {
		return err
	}

	s.logger.Infof("librefsm state machine started")
	return nil
}

// sendEvent sends an event to the FSM
func (s *LockSystem) sendEvent(event librefsm.EventID) error {
	return s.machine.SendSync(librefsm.Event{ID: event})
}

// === State Entry Actions ===

func (s *LockSystem) EnterLocked(c *librefsm.Context) error {
	// The boot screen is drawn by Start
	if c.FromState == "" {
		return nil
	}
	s.logger.Infof("Re-arming lock")
	s.showLocked()
	return nil
}

func (s *LockSystem) EnterGenerating(c *librefsm.Context) error {
	cycle := s.cycle
	if cycle == nil {
		return nil
	}
	cycle.Seed = s.seeds.Sample()
	cycle.Generated = s.generator.Generate(cycle.Seed)
	s.logger.Debugf("Cycle %s: seed=%d code=%s", cycle.ID, cycle.Seed, cycle.Generated)
	return nil
}

func (s *LockSystem) EnterAwaitingInput(c *librefsm.Context) error {
	if s.cycle != nil {
		s.cycle.inputStarted = time.Now()
	}
	s.setIndicator(channelWaiting, true)
	if err := s.display.Prompt(screenEnter); err != nil {
		s.logger.Warnf("Failed to show prompt: %v", err)
	}
	return nil
}

func (s *LockSystem) ExitAwaitingInput(c *librefsm.Context) error {
	if s.cycle != nil && !s.cycle.inputStarted.IsZero() {
		s.logger.Debugf("Cycle %s: keypad input took %v", s.cycle.ID, time.Since(s.cycle.inputStarted).Round(time.Millisecond))
	}
	return nil
}

func (s *LockSystem) EnterUnlocked(c *librefsm.Context) error {
	s.logger.Infof("Code accepted, unlocking for %v", s.timing.UnlockDwell)
	s.setIndicators(false, true, true)
	s.show(screenUnlocked, autoLockMessage(s.timing.UnlockDwell))
	return nil
}

func (s *LockSystem) EnterFailed(c *librefsm.Context) error {
	if c.FromState == fsm.StateAwaitingInput {
		s.logger.Infof("Keypad input aborted, staying locked")
	} else {
		s.logger.Infof("Code rejected, staying locked")
	}
	s.setIndicators(true, true, false)
	s.show(screenInvalid, screenLocked)
	return nil
}

// === Guards ===

func (s *LockSystem) CodesMatch(c *librefsm.Context) bool {
	if s.cycle == nil {
		return false
	}
	return s.cycle.Matches == otp.Length
}
