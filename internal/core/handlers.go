package core

// handleRequestInput starts a cycle on the falling edge of the request line.
// The line idles high under pull-up, so the rising edge is the release.
func (s *LockSystem) handleRequestInput(channel string, value bool) error {
	if value {
		s.logger.Debugf("Request line %s released", channel)
		return nil
	}
	s.logger.Debugf("Request line %s asserted", channel)

	// A dropped edge is logged by Trigger and is not an input error
	_ = s.Trigger()
	return nil
}

// handleRemoteRequest is the Redis "unlock" command.
func (s *LockSystem) handleRemoteRequest() error {
	s.logger.Infof("Remote unlock request")
	return s.Trigger()
}
