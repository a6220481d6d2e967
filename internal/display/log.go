package display

import (
	"otp-lock/internal/logger"
)

// LogDisplay stands in for the LCD on hosts without one. Screens are written
// to the log at info level.
type LogDisplay struct {
	logger *logger.Logger
	input  []byte
}

func NewLogDisplay(l *logger.Logger) *LogDisplay {
	return &LogDisplay{logger: l.WithTag("LCD")}
}

func (d *LogDisplay) Show(status, message string) error {
	d.logger.Infof("%q | %q", message, status)
	return nil
}

func (d *LogDisplay) Prompt(text string) error {
	d.input = d.input[:0]
	d.logger.Infof("%q", text)
	return nil
}

// Echo masks the digit; only the count of entered characters is shown.
func (d *LogDisplay) Echo(ch byte) error {
	d.input = append(d.input, '*')
	d.logger.Infof("input %s", d.input)
	return nil
}
