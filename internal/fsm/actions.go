package fsm

import "github.com/librescoot/librefsm"

// Actions defines the interface for lock state machine actions.
// LockSystem implements this interface; entry actions only drive
// indicators and the display; the blocking work of a cycle happens
// between events.
type Actions interface {
	// State entry actions
	EnterLocked(c *librefsm.Context) error
	EnterGenerating(c *librefsm.Context) error
	EnterAwaitingInput(c *librefsm.Context) error
	EnterUnlocked(c *librefsm.Context) error
	EnterFailed(c *librefsm.Context) error

	// State exit actions
	ExitAwaitingInput(c *librefsm.Context) error

	// Guards for conditional transitions
	CodesMatch(c *librefsm.Context) bool // True when all four positions matched
}
