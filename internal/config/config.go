// Package config loads and validates the lock configuration from an optional
// YAML file and OTPLOCK_ environment variables using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"otp-lock/internal/core"
	"otp-lock/internal/display"
	"otp-lock/internal/gsm"
	"otp-lock/internal/hardware"
	"otp-lock/internal/keypad"
	"otp-lock/internal/logger"
)

// EnvPrefix is prepended to every environment key; dots become underscores
// (gsm.destination -> OTPLOCK_GSM_DESTINATION).
const EnvPrefix = "OTPLOCK"

type Config struct {
	LogLevel string        `mapstructure:"log_level"`
	GPIO     GPIOConfig    `mapstructure:"gpio"`
	GSM      GSMConfig     `mapstructure:"gsm"`
	Display  DisplayConfig `mapstructure:"display"`
	Timing   TimingConfig  `mapstructure:"timing"`
	Redis    RedisConfig   `mapstructure:"redis"`
}

// GPIOConfig holds line offsets on a single chip.
type GPIOConfig struct {
	Chip        string `mapstructure:"chip"`
	RequestLine int    `mapstructure:"request_line"`
	LedLocked   int    `mapstructure:"led_locked"`
	LedWaiting  int    `mapstructure:"led_waiting"`
	LedUnlocked int    `mapstructure:"led_unlocked"`
	// KeypadLines are port bits 1..7 in order.
	KeypadLines []int `mapstructure:"keypad_lines"`
}

type GSMConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
	// Destination is the phone number the code is sent to. Required.
	Destination  string        `mapstructure:"destination"`
	CommandDelay time.Duration `mapstructure:"command_delay"`
}

// DisplayConfig selects the HD44780 on GPIO pins. When disabled, screens go
// to the log.
type DisplayConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	RS      string   `mapstructure:"rs"`
	RW      string   `mapstructure:"rw"`
	EN      string   `mapstructure:"en"`
	Data    []string `mapstructure:"data"`
}

type TimingConfig struct {
	UnlockDwell    time.Duration `mapstructure:"unlock_dwell"`
	FailDwell      time.Duration `mapstructure:"fail_dwell"`
	EchoDelay      time.Duration `mapstructure:"echo_delay"`
	RowDebounce    time.Duration `mapstructure:"row_debounce"`
	ColumnDebounce time.Duration `mapstructure:"column_debounce"`
	KeyPoll        time.Duration `mapstructure:"key_poll"`
	// KeyTimeout bounds each key wait; 0 waits forever.
	KeyTimeout time.Duration `mapstructure:"key_timeout"`
}

// RedisConfig enables state publication and remote requests when Host is set.
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("gpio.chip", hardware.DefaultLayout.Chip)
	v.SetDefault("gpio.request_line", hardware.DefaultLayout.Request)
	v.SetDefault("gpio.led_locked", hardware.DefaultLayout.Outputs[hardware.ChannelLocked])
	v.SetDefault("gpio.led_waiting", hardware.DefaultLayout.Outputs[hardware.ChannelWaiting])
	v.SetDefault("gpio.led_unlocked", hardware.DefaultLayout.Outputs[hardware.ChannelUnlocked])
	v.SetDefault("gpio.keypad_lines", append([]int(nil), hardware.DefaultLayout.KeypadLines[:]...))

	v.SetDefault("gsm.device", "/dev/ttyS0")
	v.SetDefault("gsm.baud", gsm.DefaultBaudRate)
	v.SetDefault("gsm.destination", "")
	v.SetDefault("gsm.command_delay", gsm.CommandDelay)

	v.SetDefault("display.enabled", false)
	v.SetDefault("display.rs", "GPIO7")
	v.SetDefault("display.rw", "GPIO8")
	v.SetDefault("display.en", "GPIO11")
	v.SetDefault("display.data", []string{"GPIO2", "GPIO3", "GPIO4", "GPIO14", "GPIO15", "GPIO18", "GPIO22", "GPIO23"})

	v.SetDefault("timing.unlock_dwell", core.DefaultUnlockDwell)
	v.SetDefault("timing.fail_dwell", core.DefaultFailDwell)
	v.SetDefault("timing.echo_delay", keypad.DefaultTiming.EchoDelay)
	v.SetDefault("timing.row_debounce", keypad.DefaultTiming.RowDebounce)
	v.SetDefault("timing.column_debounce", keypad.DefaultTiming.ColumnDebounce)
	v.SetDefault("timing.key_poll", keypad.DefaultTiming.Poll)
	v.SetDefault("timing.key_timeout", time.Duration(0))

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
}

// Load reads the YAML file at path (skipped when empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	if c.GSM.Destination == "" {
		return errors.New("config: gsm.destination must be set")
	}
	if c.GSM.Device == "" {
		return errors.New("config: gsm.device must be set")
	}
	if c.GSM.Baud <= 0 {
		return errors.New("config: gsm.baud must be positive")
	}
	if len(c.GPIO.KeypadLines) != hardware.KeypadLineCount {
		return fmt.Errorf("config: gpio.keypad_lines must list %d lines, got %d", hardware.KeypadLineCount, len(c.GPIO.KeypadLines))
	}

	durations := map[string]time.Duration{
		"gsm.command_delay":      c.GSM.CommandDelay,
		"timing.unlock_dwell":    c.Timing.UnlockDwell,
		"timing.fail_dwell":      c.Timing.FailDwell,
		"timing.echo_delay":      c.Timing.EchoDelay,
		"timing.row_debounce":    c.Timing.RowDebounce,
		"timing.column_debounce": c.Timing.ColumnDebounce,
		"timing.key_poll":        c.Timing.KeyPoll,
		"timing.key_timeout":     c.Timing.KeyTimeout,
	}
	for key, d := range durations {
		if d < 0 {
			return fmt.Errorf("config: %s must not be negative", key)
		}
	}

	if c.Display.Enabled {
		if c.Display.RS == "" || c.Display.EN == "" {
			return errors.New("config: display.rs and display.en must be set")
		}
		if len(c.Display.Data) != 8 {
			return fmt.Errorf("config: display.data must list 8 pins, got %d", len(c.Display.Data))
		}
	}

	if c.RedisEnabled() && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return fmt.Errorf("config: redis.port %d out of range", c.Redis.Port)
	}
	return nil
}

// Level is the parsed log_level. Validate has already rejected bad values.
func (c *Config) Level() logger.LogLevel {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.LogLevelInfo
	}
	return level
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func (c *Config) Layout() hardware.Layout {
	layout := hardware.Layout{
		Chip: c.GPIO.Chip,
		Outputs: map[string]int{
			hardware.ChannelLocked:   c.GPIO.LedLocked,
			hardware.ChannelWaiting:  c.GPIO.LedWaiting,
			hardware.ChannelUnlocked: c.GPIO.LedUnlocked,
		},
		Request: c.GPIO.RequestLine,
	}
	copy(layout.KeypadLines[:], c.GPIO.KeypadLines)
	return layout
}

func (c *Config) KeypadTiming() keypad.Timing {
	return keypad.Timing{
		RowDebounce:    c.Timing.RowDebounce,
		ColumnDebounce: c.Timing.ColumnDebounce,
		EchoDelay:      c.Timing.EchoDelay,
		Poll:           c.Timing.KeyPoll,
		KeyTimeout:     c.Timing.KeyTimeout,
	}
}

func (c *Config) LockTiming() core.Timing {
	return core.Timing{
		UnlockDwell: c.Timing.UnlockDwell,
		FailDwell:   c.Timing.FailDwell,
	}
}

func (c *Config) DisplayPins() display.Pins {
	pins := display.Pins{RS: c.Display.RS, RW: c.Display.RW, EN: c.Display.EN}
	copy(pins.Data[:], c.Display.Data)
	return pins
}
