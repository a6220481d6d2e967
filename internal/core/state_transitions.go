package core

import (
	"otp-lock/internal/types"
)

// getCurrentState returns the machine state, falling back to the last state
// seen by the change callback before the machine exists.
func (s *LockSystem) getCurrentState() types.LockState {
	if s.machine != nil {
		return stateIDToLockState(s.machine.CurrentState())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// State is the current lock state.
func (s *LockSystem) State() types.LockState {
	return s.getCurrentState()
}
