package fsm

import "github.com/librescoot/librefsm"

// Lock states
const (
	StateLocked        librefsm.StateID = "locked"
	StateGenerating    librefsm.StateID = "generating"
	StateDispatching   librefsm.StateID = "dispatching"
	StateAwaitingInput librefsm.StateID = "awaiting-input"
	StateVerifying     librefsm.StateID = "verifying"
	StateUnlocked      librefsm.StateID = "unlocked"
	StateFailed        librefsm.StateID = "failed"
)

// Cycle events, all sent by the cycle runner
const (
	EvRequest       librefsm.EventID = "request"
	EvCodeReady     librefsm.EventID = "code-ready"
	EvDispatched    librefsm.EventID = "dispatched"
	EvInputComplete librefsm.EventID = "input-complete"
	EvInputAborted  librefsm.EventID = "input-aborted"
	EvVerified      librefsm.EventID = "verified"
	EvDwellElapsed  librefsm.EventID = "dwell-elapsed"
)
