package messaging

import "otp-lock/internal/types"

// NopClient is used when no Redis host is configured.
type NopClient struct{}

func (NopClient) SetCallbacks(Callbacks) {}
func (NopClient) Connect() error         { return nil }
func (NopClient) StartListening() error  { return nil }
func (NopClient) Close() error           { return nil }

func (NopClient) PublishLockState(types.LockState) error { return nil }

func (NopClient) PublishCycleOutcome(types.CycleOutcome) error { return nil }
