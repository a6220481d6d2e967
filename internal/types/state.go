package types

type LockState string

const (
	StateLocked        LockState = "locked"
	StateGenerating    LockState = "generating"
	StateDispatching   LockState = "dispatching"
	StateAwaitingInput LockState = "awaiting-input"
	StateVerifying     LockState = "verifying"
	StateUnlocked      LockState = "unlocked"
	StateFailed        LockState = "failed"
)

// CycleOutcome is the result published at the end of a cycle.
type CycleOutcome string

const (
	OutcomeSuccess CycleOutcome = "success"
	OutcomeFailure CycleOutcome = "failure"
	OutcomeAborted CycleOutcome = "aborted"
)
