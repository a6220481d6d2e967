package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"otp-lock/internal/config"
	"otp-lock/internal/core"
	"otp-lock/internal/display"
	"otp-lock/internal/gsm"
	"otp-lock/internal/hardware"
	"otp-lock/internal/keypad"
	"otp-lock/internal/logger"
	"otp-lock/internal/messaging"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a YAML config file")

	// Service log level, overrides log_level from the config
	var serviceLogLevel string
	flag.StringVar(&serviceLogLevel, "log", "", "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")

	flag.Parse()

	// Create standard logger with appropriate format
	var stdLogger *log.Logger
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, use minimal format
		stdLogger = log.New(os.Stdout, "", 0)
	} else {
		// Running interactively, use timestamps
		stdLogger = log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		stdLogger.Fatalf("Failed to load config: %v", err)
	}

	level := cfg.Level()
	if serviceLogLevel != "" {
		if level, err = logger.ParseLevel(serviceLogLevel); err != nil {
			stdLogger.Fatalf("Invalid -log: %v", err)
		}
	}

	// Create leveled logger
	l := logger.NewLogger(stdLogger, level)

	l.Infof("Starting OTP lock service...")

	io := hardware.NewLinuxHardwareIO(cfg.Layout(), l)

	port, err := gsm.OpenPort(cfg.GSM.Device, cfg.GSM.Baud)
	if err != nil {
		l.Fatalf("Failed to open modem port: %v", err)
	}
	defer port.Close()
	l.Infof("Modem on %s at %d baud, destination %s", cfg.GSM.Device, cfg.GSM.Baud, cfg.GSM.Destination)

	var screen core.Display
	if cfg.Display.Enabled {
		bus, err := display.OpenPinBus(cfg.DisplayPins())
		if err != nil {
			l.Fatalf("Failed to open display: %v", err)
		}
		screen = display.NewHD44780(bus)
	} else {
		l.Infof("No display configured, screens go to the log")
		screen = display.NewLogDisplay(l)
	}

	var redis core.MessagingClient = messaging.NopClient{}
	if cfg.RedisEnabled() {
		redis = messaging.NewRedisClient(cfg.Redis.Host, cfg.Redis.Port, l)
	}

	system := core.NewLockSystem(io, redis, core.Peripherals{
		Display:    screen,
		Dispatcher: gsm.NewDispatcher(port, cfg.GSM.Destination, cfg.GSM.CommandDelay, l),
		Collector:  keypad.NewCollector(io.KeypadPort(), cfg.KeypadTiming(), l),
		Seeds:      hardware.NewFreeRunningCounter(),
	}, cfg.LockTiming(), l)

	if err := system.Start(); err != nil {
		l.Fatalf("Failed to start system: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	l.Infof("Received signal %v, shutting down...", sig)
	system.Shutdown()
	l.Infof("Shutdown complete")
}
