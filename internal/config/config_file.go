package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type sensorFile struct {
	Address           *string  `json:"address" yaml:"address"`
	SampleInterval    *string  `json:"sample_interval" yaml:"sample_interval"` // "5s"
	ReconnectCooldown *string  `json:"reconnect_cooldown" yaml:"reconnect_cooldown"`
	ConnectWindow     *string  `json:"connect_window" yaml:"connect_window"`
	PulseTimeout      *string  `json:"pulse_timeout" yaml:"pulse_timeout"`
	SampleGap         *string  `json:"sample_gap" yaml:"sample_gap"`
	ClientTimeout     *string  `json:"client_timeout" yaml:"client_timeout"`
	FullDistance      *float64 `json:"full_distance" yaml:"full_distance"`
	EmptyDistance     *float64 `json:"empty_distance" yaml:"empty_distance"`
	SerialPort        *string  `json:"serial_port" yaml:"serial_port"`
	BaudRate          *int     `json:"baud_rate" yaml:"baud_rate"`
	Simulate          *bool    `json:"simulate" yaml:"simulate"`
	ReconnectHook     *string  `json:"reconnect_hook" yaml:"reconnect_hook"`
	LogLevel          *string  `json:"log_level" yaml:"log_level"`
}

type collectorFile struct {
	Address        *string `json:"address" yaml:"address"`
	LogPath        *string `json:"log_path" yaml:"log_path"`
	DatabaseDSN    *string `json:"database_dsn" yaml:"database_dsn"`
	RefreshSeconds *int    `json:"refresh_seconds" yaml:"refresh_seconds"`
	LogLevel       *string `json:"log_level" yaml:"log_level"`
}

// loadFile decodes path into v, as YAML for .yaml/.yml and as JSON otherwise.
func loadFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	default:
		err = json.Unmarshal(b, v)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func fileDuration(src *string, f *durationFlag) error {
	if src == nil || f.set {
		return nil
	}
	d, err := parseDuration(*src)
	if err != nil {
		return err
	}
	f.v = d
	return nil
}

func fileString(src *string, f *strFlag) {
	if src != nil && !f.set {
		f.v = *src
	}
}
