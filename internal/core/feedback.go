package core

import (
	"fmt"
	"time"

	"otp-lock/internal/hardware"
)

// Screen texts are padded to overwrite what the previous screen left behind.
const (
	screenLocked   = " System Locked   "
	screenWelcome  = "Press Unlock Key      "
	screenEnter    = " Enter OTP   "
	screenUnlocked = " System Unlocked   "
	screenInvalid  = " Invalid OTP   "
)

const (
	channelLocked   = hardware.ChannelLocked
	channelWaiting  = hardware.ChannelWaiting
	channelUnlocked = hardware.ChannelUnlocked
)

func autoLockMessage(dwell time.Duration) string {
	return fmt.Sprintf("Auto lock in %ds ", int(dwell.Round(time.Second)/time.Second))
}

// showLocked restores the idle outputs and the welcome screen.
func (s *LockSystem) showLocked() {
	s.setIndicators(true, false, false)
	s.show(screenLocked, screenWelcome)
}

// setIndicators drives all three outputs. Locked and unlocked are never on
// together; the one being turned off is written first.
func (s *LockSystem) setIndicators(locked, waiting, unlocked bool) {
	s.setIndicator(channelWaiting, waiting)
	if locked {
		s.setIndicator(channelUnlocked, false)
		s.setIndicator(channelLocked, true)
	} else {
		s.setIndicator(channelLocked, false)
		s.setIndicator(channelUnlocked, unlocked)
	}
}

// Feedback failures never change the outcome of a cycle.
func (s *LockSystem) setIndicator(channel string, on bool) {
	if err := s.io.WriteDigitalOutput(channel, on); err != nil {
		s.logger.Warnf("Failed to set %s=%v: %v", channel, on, err)
	}
}

func (s *LockSystem) show(status, message string) {
	if err := s.display.Show(status, message); err != nil {
		s.logger.Warnf("Failed to update display: %v", err)
	}
}
