// Package config provides application configuration structures and helpers.
//
// Values are layered: defaults, then a JSON or YAML file (-c/-config/CONFIG) for
// flags not given explicitly, then flags, then environment variables. A .env file
// in the working directory is loaded first and never overrides the real environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// NewLogger builds the production zap logger writing to stdout and logFile.
func NewLogger(level, logFile string) (*zap.SugaredLogger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		logCfg.OutputPaths = append(logCfg.OutputPaths, logFile)
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level %q: %w", level, err)
		}
		logCfg.Level = lvl
	}

	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// StartupLogger logs to stdout at info level. Binaries use it for failures that
// happen before their configured logger exists.
func StartupLogger() *zap.SugaredLogger {
	logger, err := NewLogger("info", "")
	if err != nil {
		return zap.NewExample().Sugar()
	}
	return logger
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid %s env var: %v", name, err)
			return
		}
		*dst = i
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("invalid %s env var: %v", name, err)
			return
		}
		*dst = f
	}
}

func envBool(name string, dst *bool) {
	if v := os.Getenv(name); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid %s env var: %v", name, err)
			return
		}
		*dst = b
	}
}

// envDuration accepts Go durations ("5s") and, like the metrics agent did, bare seconds.
func envDuration(name string, dst *time.Duration) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	d, err := parseDuration(v)
	if err != nil {
		log.Printf("invalid %s env var: %v", name, err)
		return
	}
	*dst = d
}

func parseDuration(s string) (time.Duration, error) {
	if sec, err := strconv.Atoi(s); err == nil {
		return time.Duration(sec) * time.Second, nil
	}
	return time.ParseDuration(s)
}

func normalizeServerAddr(addr string) string {
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimRight(addr, "/")
}
