package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otp-lock/internal/hardware"
	"otp-lock/internal/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "otp-lock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OTPLOCK_GSM_DESTINATION", "+15550100")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, logger.LogLevelInfo, cfg.Level())
	assert.Equal(t, "+15550100", cfg.GSM.Destination)
	assert.Equal(t, 9600, cfg.GSM.Baud)
	assert.Equal(t, time.Second, cfg.GSM.CommandDelay)
	assert.Equal(t, 5*time.Second, cfg.Timing.UnlockDwell)
	assert.Equal(t, 3*time.Second, cfg.Timing.FailDwell)
	assert.Equal(t, 250*time.Millisecond, cfg.Timing.EchoDelay)
	assert.Equal(t, time.Millisecond, cfg.Timing.RowDebounce)
	assert.Equal(t, 2*time.Millisecond, cfg.Timing.ColumnDebounce)
	assert.Zero(t, cfg.Timing.KeyTimeout)
	assert.False(t, cfg.Display.Enabled)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, hardware.DefaultLayout, cfg.Layout())
}

func TestLoad_MissingDestination(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gsm.destination")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OTPLOCK_GSM_DESTINATION", "+15550100")
	t.Setenv("OTPLOCK_GSM_BAUD", "115200")
	t.Setenv("OTPLOCK_TIMING_KEY_TIMEOUT", "30s")
	t.Setenv("OTPLOCK_GPIO_KEYPAD_LINES", "1,2,3,4,5,6,7")
	t.Setenv("OTPLOCK_REDIS_HOST", "localhost")
	t.Setenv("OTPLOCK_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.GSM.Baud)
	assert.Equal(t, 30*time.Second, cfg.Timing.KeyTimeout)
	assert.Equal(t, 30*time.Second, cfg.KeypadTiming().KeyTimeout)
	assert.Equal(t, [hardware.KeypadLineCount]int{1, 2, 3, 4, 5, 6, 7}, cfg.Layout().KeypadLines)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, logger.LogLevelDebug, cfg.Level())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: warn
gpio:
  chip: gpiochip1
  request_line: 4
gsm:
  device: /dev/ttyUSB0
  destination: "+15550199"
display:
  enabled: true
  rs: GPIO9
timing:
  fail_dwell: 2s
  unlock_dwell: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, logger.LogLevelWarning, cfg.Level())
	assert.Equal(t, "/dev/ttyUSB0", cfg.GSM.Device)
	assert.Equal(t, "+15550199", cfg.GSM.Destination)

	layout := cfg.Layout()
	assert.Equal(t, "gpiochip1", layout.Chip)
	assert.Equal(t, 4, layout.Request)
	assert.Equal(t, hardware.DefaultLayout.KeypadLines, layout.KeypadLines)

	timing := cfg.LockTiming()
	assert.Equal(t, 10*time.Second, timing.UnlockDwell)
	assert.Equal(t, 2*time.Second, timing.FailDwell)

	pins := cfg.DisplayPins()
	assert.Equal(t, "GPIO9", pins.RS)
	assert.Equal(t, "GPIO8", pins.RW)
	assert.Equal(t, "GPIO2", pins.Data[0])
	assert.Equal(t, "GPIO23", pins.Data[7])
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
gsm:
  destination: "+15550199"
`)
	t.Setenv("OTPLOCK_GSM_DESTINATION", "+15550100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "+15550100", cfg.GSM.Destination)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"keypad line count", "gpio:\n  keypad_lines: [1, 2, 3]\n", "gpio.keypad_lines"},
		{"negative dwell", "timing:\n  fail_dwell: -1s\n", "timing.fail_dwell"},
		{"zero baud", "gsm:\n  baud: 0\n", "gsm.baud"},
		{"log level", "log_level: loud\n", "log_level"},
		{"display data", "display:\n  enabled: true\n  data: [GPIO2]\n", "display.data"},
		{"redis port", "redis:\n  host: localhost\n  port: 70000\n", "redis.port"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OTPLOCK_GSM_DESTINATION", "+15550100")
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
