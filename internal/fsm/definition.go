package fsm

import (
	"github.com/librescoot/librefsm"
)

// NewDefinition creates the lock FSM definition.
// The actions parameter provides the implementation for state entry/exit
// and guards.
func NewDefinition(actions Actions) *librefsm.Definition {
	return librefsm.NewDefinition().
		State(StateLocked,
			librefsm.WithOnEnter(actions.EnterLocked),
		).
		State(StateGenerating,
			librefsm.WithOnEnter(actions.EnterGenerating),
		).
		State(StateDispatching).
		State(StateAwaitingInput,
			librefsm.WithOnEnter(actions.EnterAwaitingInput),
			librefsm.WithOnExit(actions.ExitAwaitingInput),
		).
		State(StateVerifying).
		State(StateUnlocked,
			librefsm.WithOnEnter(actions.EnterUnlocked),
		).
		State(StateFailed,
			librefsm.WithOnEnter(actions.EnterFailed),
		).

		// === Transitions ===

		// Only an idle lock accepts a request; anywhere else it is dropped
		Transition(StateLocked, EvRequest, StateGenerating).
		Transition(StateGenerating, EvCodeReady, StateDispatching).
		Transition(StateDispatching, EvDispatched, StateAwaitingInput).

		Transition(StateAwaitingInput, EvInputComplete, StateVerifying).
		Transition(StateAwaitingInput, EvInputAborted, StateFailed).

		Transition(StateVerifying, EvVerified, StateUnlocked,
			librefsm.WithGuard(actions.CodesMatch),
		).
		Transition(StateVerifying, EvVerified, StateFailed).

		// Dwell over, re-arm
		Transition(StateUnlocked, EvDwellElapsed, StateLocked).
		Transition(StateFailed, EvDwellElapsed, StateLocked).

		// Initial state
		Initial(StateLocked)
}
