package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/and161185/fill-monitor/model"
)

// SensorConfig holds the configuration settings for the sensor node.
type SensorConfig struct {
	ServerAddr        string            // Collector base URL
	SampleInterval    time.Duration     // Time between readings
	ReconnectCooldown time.Duration     // Minimum time between reconnect attempts
	ConnectWindow     time.Duration     // Longest a reconnect attempt may block
	PulseTimeout      time.Duration     // Longest wait for an echo
	SampleGap         time.Duration     // Pause between the three raw samples
	ClientTimeout     time.Duration     // HTTP POST timeout
	Calibration       model.Calibration // Full and empty distances, cm
	SerialPort        string            // Bridge port, e.g. /dev/ttyUSB0
	BaudRate          int               // Bridge baud rate
	Simulate          bool              // Use a scripted ranger instead of the serial bridge
	ReconnectHook     string            // Shell command run to bring the network back
	LogLevel          string            // zap level name
}

// NewSensorConfig parses os.Args and the environment.
func NewSensorConfig() (*SensorConfig, error) {
	return ParseSensorConfig(os.Args[1:])
}

// ParseSensorConfig builds a SensorConfig from args, the optional config file and the environment.
func ParseSensorConfig(args []string) (*SensorConfig, error) {
	loadDotEnv()

	fs := flag.NewFlagSet("sensor", flag.ContinueOnError)

	fAddr := strFlag{v: "http://localhost:5000"}
	fInterval := durationFlag{v: 5 * time.Second}
	fCooldown := durationFlag{v: 10 * time.Second}
	fWindow := durationFlag{v: 8 * time.Second}
	fPulse := durationFlag{v: 30 * time.Millisecond}
	fGap := durationFlag{v: 40 * time.Millisecond}
	fTimeout := durationFlag{v: 5 * time.Second}
	fFull := floatFlag{v: model.DefaultCalibration.FullDistance}
	fEmpty := floatFlag{v: model.DefaultCalibration.EmptyDistance}
	fPort := strFlag{}
	fBaud := intFlag{v: 115200}
	fSim := boolFlag{}
	fHook := strFlag{}
	fLevel := strFlag{v: "info"}
	var fConf strFlag

	fs.Var(&fAddr, "a", "collector address (http(s)://host:port)")
	fs.Var(&fInterval, "i", "sample interval")
	fs.Var(&fCooldown, "w", "reconnect cooldown")
	fs.Var(&fWindow, "cw", "reconnect window")
	fs.Var(&fPulse, "pt", "echo pulse timeout")
	fs.Var(&fGap, "g", "gap between raw samples")
	fs.Var(&fTimeout, "t", "HTTP client timeout")
	fs.Var(&fFull, "full", "distance when full, cm")
	fs.Var(&fEmpty, "empty", "distance when empty, cm")
	fs.Var(&fPort, "port", "serial port of the ranging bridge")
	fs.Var(&fBaud, "baud", "serial baud rate")
	fs.Var(&fSim, "simulate", "use a simulated ranger")
	fs.Var(&fHook, "hook", "shell command to reconnect the network")
	fs.Var(&fLevel, "log-level", "log level")
	fs.Var(&fConf, "c", "path to JSON/YAML config file")
	fs.Var(&fConf, "config", "path to JSON/YAML config file (alias)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fConf.v == "" {
		fConf.v = os.Getenv("CONFIG")
	}
	if fConf.v != "" {
		var file sensorFile
		if err := loadFile(fConf.v, &file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := applySensorFile(&file, sensorFlags{
			addr: &fAddr, interval: &fInterval, cooldown: &fCooldown, window: &fWindow,
			pulse: &fPulse, gap: &fGap, timeout: &fTimeout, full: &fFull, empty: &fEmpty,
			port: &fPort, baud: &fBaud, sim: &fSim, hook: &fHook, level: &fLevel,
		}); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	cfg := &SensorConfig{
		ServerAddr:        fAddr.v,
		SampleInterval:    fInterval.v,
		ReconnectCooldown: fCooldown.v,
		ConnectWindow:     fWindow.v,
		PulseTimeout:      fPulse.v,
		SampleGap:         fGap.v,
		ClientTimeout:     fTimeout.v,
		Calibration:       model.Calibration{FullDistance: fFull.v, EmptyDistance: fEmpty.v},
		SerialPort:        fPort.v,
		BaudRate:          fBaud.v,
		Simulate:          fSim.v,
		ReconnectHook:     fHook.v,
		LogLevel:          fLevel.v,
	}

	readSensorEnvironment(cfg)

	cfg.ServerAddr = normalizeServerAddr(cfg.ServerAddr)
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, err
	}
	if cfg.SampleInterval <= 0 {
		return nil, fmt.Errorf("sample interval must be positive, got %s", cfg.SampleInterval)
	}
	if !cfg.Simulate && cfg.SerialPort == "" {
		return nil, fmt.Errorf("serial port is required unless -simulate is set")
	}
	return cfg, nil
}

type sensorFlags struct {
	addr, port, hook, level                         *strFlag
	interval, cooldown, window, pulse, gap, timeout *durationFlag
	full, empty                                     *floatFlag
	baud                                            *intFlag
	sim                                             *boolFlag
}

func applySensorFile(js *sensorFile, f sensorFlags) error {
	fileString(js.Address, f.addr)
	fileString(js.SerialPort, f.port)
	fileString(js.ReconnectHook, f.hook)
	fileString(js.LogLevel, f.level)

	durations := []struct {
		src *string
		dst *durationFlag
	}{
		{js.SampleInterval, f.interval},
		{js.ReconnectCooldown, f.cooldown},
		{js.ConnectWindow, f.window},
		{js.PulseTimeout, f.pulse},
		{js.SampleGap, f.gap},
		{js.ClientTimeout, f.timeout},
	}
	for _, d := range durations {
		if err := fileDuration(d.src, d.dst); err != nil {
			return err
		}
	}

	if js.FullDistance != nil && !f.full.set {
		f.full.v = *js.FullDistance
	}
	if js.EmptyDistance != nil && !f.empty.set {
		f.empty.v = *js.EmptyDistance
	}
	if js.BaudRate != nil && !f.baud.set {
		f.baud.v = *js.BaudRate
	}
	if js.Simulate != nil && !f.sim.set {
		f.sim.v = *js.Simulate
	}
	return nil
}

func readSensorEnvironment(cfg *SensorConfig) {
	envString("ADDRESS", &cfg.ServerAddr)
	envDuration("SAMPLE_INTERVAL", &cfg.SampleInterval)
	envDuration("RECONNECT_COOLDOWN", &cfg.ReconnectCooldown)
	envDuration("CONNECT_WINDOW", &cfg.ConnectWindow)
	envDuration("PULSE_TIMEOUT", &cfg.PulseTimeout)
	envDuration("SAMPLE_GAP", &cfg.SampleGap)
	envDuration("CLIENT_TIMEOUT", &cfg.ClientTimeout)
	envFloat("FULL_DISTANCE", &cfg.Calibration.FullDistance)
	envFloat("EMPTY_DISTANCE", &cfg.Calibration.EmptyDistance)
	envString("SERIAL_PORT", &cfg.SerialPort)
	envInt("BAUD_RATE", &cfg.BaudRate)
	envBool("SIMULATE", &cfg.Simulate)
	envString("RECONNECT_HOOK", &cfg.ReconnectHook)
	envString("LOG_LEVEL", &cfg.LogLevel)
}
