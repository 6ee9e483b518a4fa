package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/fill-monitor/internal/buildinfo"
	"github.com/and161185/fill-monitor/internal/client"
	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/internal/connectivity"
	"github.com/and161185/fill-monitor/internal/display"
	"github.com/and161185/fill-monitor/internal/ranger"
	"github.com/and161185/fill-monitor/internal/sampler"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, err := config.NewSensorConfig()
	if err != nil {
		config.StartupLogger().Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, "sensor.log")
	if err != nil {
		config.StartupLogger().Fatalf("logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
	_ = logger.Sync()
}

func run(cfg *config.SensorConfig, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildinfo.New(buildVersion, buildDate, buildCommit).Log(logger)

	rng, closeRanger, err := openRanger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRanger()

	link, err := connectivity.NewTCPLink(cfg.ServerAddr, cfg.ReconnectHook, 0)
	if err != nil {
		return err
	}

	logger.Infof("Sensor config: ServerAddr=%s, SampleInterval=%s, Full=%.1f, Empty=%.1f, Simulate=%t, SerialPort=%q",
		cfg.ServerAddr,
		cfg.SampleInterval,
		cfg.Calibration.FullDistance,
		cfg.Calibration.EmptyDistance,
		cfg.Simulate,
		cfg.SerialPort,
	)

	smp := sampler.NewSampler(rng, cfg.Calibration, cfg.PulseTimeout, cfg.SampleGap, logger)
	keeper := connectivity.NewKeeper(link, cfg.ReconnectCooldown, cfg.ConnectWindow, logger)
	clnt := client.NewClient(smp, keeper, display.NewLogDisplay(logger), cfg, logger)

	if err := clnt.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("sensor stopped")
	return nil
}

func openRanger(cfg *config.SensorConfig, logger *zap.SugaredLogger) (sampler.Ranger, func(), error) {
	if cfg.Simulate {
		logger.Info("using simulated ranger")
		return ranger.Simulated(), func() {}, nil
	}

	s := ranger.NewSerial(cfg.SerialPort, cfg.BaudRate)
	if err := s.Open(); err != nil {
		if ports, perr := ranger.Ports(); perr == nil {
			logger.Infof("available serial ports: %v", ports)
		}
		return nil, nil, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			logger.Errorf("failed to close serial port: %v", err)
		}
	}, nil
}
