package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"otp-lock/internal/fsm"
	"otp-lock/internal/keypad"
	"otp-lock/internal/otp"
	"otp-lock/internal/types"
)

// CycleState is everything one unlock cycle knows. It is created when a
// request is accepted and dropped when the lock re-arms.
type CycleState struct {
	ID        string
	Started   time.Time
	Seed      otp.Seed
	Generated otp.Code
	Received  otp.Code
	Scan      keypad.ScanState
	Matches   int
	Outcome   types.CycleOutcome

	inputStarted time.Time
}

func newCycleState() *CycleState {
	return &CycleState{
		ID:      uuid.New().String(),
		Started: time.Now(),
	}
}

// runCycle drives the machine from locked back to locked. All blocking
// work happens here, between events.
func (s *LockSystem) runCycle(ctx context.Context) {
	cycle := newCycleState()
	s.cycle = cycle
	defer func() { s.cycle = nil }()

	s.logger.Infof("Cycle %s: unlock requested", cycle.ID)

	if err := s.sendEvent(fsm.EvRequest); err != nil {
		s.logger.Errorf("Cycle %s: request not accepted: %v", cycle.ID, err)
		return
	}
	if err := s.sendEvent(fsm.EvCodeReady); err != nil {
		s.abortCycle(cycle, err)
		return
	}

	s.dispatcher.Send(ctx, cycle.Generated)

	if err := s.sendEvent(fsm.EvDispatched); err != nil {
		s.abortCycle(cycle, err)
		return
	}

	code, err := s.collector.Collect(ctx, &cycle.Scan, s.echo)
	if err != nil {
		s.logger.Warnf("Cycle %s: keypad input aborted: %v", cycle.ID, err)
		cycle.Outcome = types.OutcomeAborted
		if err := s.sendEvent(fsm.EvInputAborted); err != nil {
			s.abortCycle(cycle, err)
			return
		}
	} else {
		cycle.Received = code
		if err := s.sendEvent(fsm.EvInputComplete); err != nil {
			s.abortCycle(cycle, err)
			return
		}

		cycle.Matches = otp.Compare(cycle.Generated, cycle.Received)
		s.logger.Debugf("Cycle %s: %d of %d positions match", cycle.ID, cycle.Matches, otp.Length)

		if err := s.sendEvent(fsm.EvVerified); err != nil {
			s.abortCycle(cycle, err)
			return
		}
		cycle.Outcome = types.OutcomeFailure
		if s.machine.CurrentState() == fsm.StateUnlocked {
			cycle.Outcome = types.OutcomeSuccess
		}
	}

	dwell := s.timing.FailDwell
	if cycle.Outcome == types.OutcomeSuccess {
		dwell = s.timing.UnlockDwell
	}
	// An interrupted dwell still re-arms the lock
	if err := s.sleep(ctx, dwell); err != nil {
		s.logger.Infof("Cycle %s: dwell interrupted: %v", cycle.ID, err)
	}

	if err := s.sendEvent(fsm.EvDwellElapsed); err != nil {
		s.abortCycle(cycle, err)
		return
	}

	s.finishCycle(cycle)
}

// abortCycle forces the machine back to locked after an event was refused.
func (s *LockSystem) abortCycle(cycle *CycleState, err error) {
	s.logger.Errorf("Cycle %s: event rejected in %s: %v", cycle.ID, s.getCurrentState(), err)
	cycle.Outcome = types.OutcomeAborted

	if err := s.machine.SetState(fsm.StateLocked); err != nil {
		s.logger.Errorf("Cycle %s: failed to force locked state: %v", cycle.ID, err)
	}
	s.showLocked()
	s.finishCycle(cycle)
}

func (s *LockSystem) finishCycle(cycle *CycleState) {
	s.logger.Infof("Cycle %s finished: %s after %v", cycle.ID, cycle.Outcome, time.Since(cycle.Started).Round(time.Millisecond))
	if err := s.redis.PublishCycleOutcome(cycle.Outcome); err != nil {
		s.logger.Warnf("Failed to publish cycle outcome: %v", err)
	}
}

func (s *LockSystem) echo(index int, ch byte) {
	if err := s.display.Echo(ch); err != nil {
		s.logger.Warnf("Failed to echo key %d: %v", index, err)
	}
}
