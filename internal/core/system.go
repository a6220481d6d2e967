package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/librescoot/librefsm"

	"otp-lock/internal/hardware"
	"otp-lock/internal/logger"
	"otp-lock/internal/messaging"
	"otp-lock/internal/otp"
	"otp-lock/internal/types"
)

// ErrCycleInProgress is returned by Trigger while an unlock cycle is running.
var ErrCycleInProgress = errors.New("unlock cycle in progress")

const (
	DefaultUnlockDwell = 5 * time.Second
	DefaultFailDwell   = 3 * time.Second
)

// Timing holds how long the result screens stay up before the lock re-arms.
type Timing struct {
	UnlockDwell time.Duration
	FailDwell   time.Duration
}

var DefaultTiming = Timing{
	UnlockDwell: DefaultUnlockDwell,
	FailDwell:   DefaultFailDwell,
}

type LockSystem struct {
	state      types.LockState
	logger     *logger.Logger
	io         HardwareIO
	redis      MessagingClient
	display    Display
	dispatcher Dispatcher
	collector  Collector
	seeds      otp.SeedSource
	generator  *otp.Generator
	timing     Timing
	machine    *librefsm.Machine
	mu         sync.RWMutex

	// busy is claimed by Trigger and released by the runner once the
	// machine is back in locked.
	busy     atomic.Bool
	requests chan struct{}
	cycle    *CycleState

	sleep       func(ctx context.Context, d time.Duration) error
	ctx         context.Context
	cancel      context.CancelFunc
	stopMachine context.CancelFunc
	wg          sync.WaitGroup
}

func NewLockSystem(io HardwareIO, redis MessagingClient, p Peripherals, timing Timing, l *logger.Logger) *LockSystem {
	ctx, cancel := context.WithCancel(context.Background())

	generator := p.Generator
	if generator == nil {
		generator = otp.NewGenerator(nil)
	}

	return &LockSystem{
		state:       types.StateLocked,
		logger:      l.WithTag("Lock"),
		io:          io,
		redis:       redis,
		display:     p.Display,
		dispatcher:  p.Dispatcher,
		collector:   p.Collector,
		seeds:       p.Seeds,
		generator:   generator,
		timing:      timing,
		requests:    make(chan struct{}, 1),
		sleep:       sleepContext,
		ctx:         ctx,
		cancel:      cancel,
		stopMachine: func() {},
	}
}

func (s *LockSystem) Start() error {
	s.logger.Infof("Starting OTP lock system")

	s.redis.SetCallbacks(messaging.Callbacks{
		RequestCallback: s.handleRemoteRequest,
	})
	if err := s.redis.Connect(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Outputs come up locked before anything else runs
	s.io.SetInitialValue(hardware.ChannelLocked, true)
	s.io.SetInitialValue(hardware.ChannelWaiting, false)
	s.io.SetInitialValue(hardware.ChannelUnlocked, false)

	if err := s.io.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize hardware: %w", err)
	}

	seed := s.seeds.Sample()
	s.generator.Reseed(seed)
	s.logger.Debugf("Generator seeded at boot: %d", seed)

	machineCtx, stopMachine := context.WithCancel(context.Background())
	s.stopMachine = stopMachine
	if err := s.initFSM(machineCtx); err != nil {
		return fmt.Errorf("failed to start state machine: %w", err)
	}
	s.showLocked()

	if err := s.redis.PublishLockState(types.StateLocked); err != nil {
		s.logger.Warnf("Failed to publish initial state: %v", err)
	}

	s.wg.Add(1)
	go s.run()

	s.io.RegisterInputCallback(hardware.ChannelRequest, s.handleRequestInput)

	if err := s.redis.StartListening(); err != nil {
		return fmt.Errorf("failed to start Redis listeners: %w", err)
	}

	s.logger.Infof("System started successfully")
	return nil
}

// Trigger requests one unlock cycle. While a cycle is running the request
// is dropped and ErrCycleInProgress returned.
func (s *LockSystem) Trigger() error {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Infof("Unlock request ignored: cycle in progress")
		return ErrCycleInProgress
	}
	s.requests <- struct{}{}
	return nil
}

// Busy reports whether a cycle is claimed or running.
func (s *LockSystem) Busy() bool {
	return s.busy.Load()
}

func (s *LockSystem) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.requests:
			s.runCycle(s.ctx)
			s.busy.Store(false)
		}
	}
}

func (s *LockSystem) Shutdown() {
	s.logger.Infof("Shutting down OTP lock system")

	s.cancel()
	s.wg.Wait()

	// The machine outlives the runner so an interrupted cycle can still
	// return to locked.
	s.stopMachine()
	if err := s.redis.Close(); err != nil {
		s.logger.Warnf("Failed to close Redis client: %v", err)
	}
	s.io.Cleanup()

	s.logger.Infof("Shutdown complete")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
