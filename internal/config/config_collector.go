package config

import (
	"flag"
	"fmt"
	"os"
)

// CollectorConfig holds the configuration settings for the collector.
type CollectorConfig struct {
	Addr           string // Listen address
	LogPath        string // Append-only readings log
	DatabaseDsn    string // Optional PostgreSQL journal
	RefreshSeconds int    // Status page auto-refresh period
	LogLevel       string // zap level name
}

// NewCollectorConfig parses os.Args and the environment.
func NewCollectorConfig() (*CollectorConfig, error) {
	return ParseCollectorConfig(os.Args[1:])
}

// ParseCollectorConfig builds a CollectorConfig from args, the optional config file and the environment.
func ParseCollectorConfig(args []string) (*CollectorConfig, error) {
	loadDotEnv()

	fs := flag.NewFlagSet("collector", flag.ContinueOnError)

	fAddr := strFlag{v: "0.0.0.0:5000"}
	fLog := strFlag{v: "./dustbin_log.txt"}
	fDSN := strFlag{}
	fRefresh := intFlag{v: 3}
	fLevel := strFlag{v: "info"}
	var fConf strFlag

	fs.Var(&fAddr, "a", "HTTP listen address")
	fs.Var(&fLog, "f", "path to the readings log")
	fs.Var(&fDSN, "d", "PostgreSQL connection string for the readings journal")
	fs.Var(&fRefresh, "r", "status page refresh (seconds)")
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
		var file collectorFile
		if err := loadFile(fConf.v, &file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		fileString(file.Address, &fAddr)
		fileString(file.LogPath, &fLog)
		fileString(file.DatabaseDSN, &fDSN)
		fileString(file.LogLevel, &fLevel)
		if file.RefreshSeconds != nil && !fRefresh.set {
			fRefresh.v = *file.RefreshSeconds
		}
	}

	cfg := &CollectorConfig{
		Addr:           fAddr.v,
		LogPath:        fLog.v,
		DatabaseDsn:    fDSN.v,
		RefreshSeconds: fRefresh.v,
		LogLevel:       fLevel.v,
	}

	readCollectorEnvironment(cfg)

	if cfg.LogPath == "" {
		return nil, fmt.Errorf("log path must not be empty")
	}
	if cfg.RefreshSeconds <= 0 {
		cfg.RefreshSeconds = 3
	}
	return cfg, nil
}

func readCollectorEnvironment(cfg *CollectorConfig) {
	envString("ADDRESS", &cfg.Addr)
	envString("LOG_PATH", &cfg.LogPath)
	envString("DATABASE_DSN", &cfg.DatabaseDsn)
	envInt("REFRESH_SECONDS", &cfg.RefreshSeconds)
	envString("LOG_LEVEL", &cfg.LogLevel)
}
