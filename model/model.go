// Package model contains core data types for the project.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/fill-monitor/internal/errs"
)

const (
	InvalidDistance float64 = -1 // InvalidDistance marks a distance with no usable echo.
	UnknownFill     int     = -1 // UnknownFill marks a fill level derived from an invalid distance.
)

// Reading is a single fill-level measurement.
type Reading struct {
	Distance  float64   `json:"distance"`  // Filtered distance to the surface, cm.
	Fill      int       `json:"fill"`      // Fill level, percent.
	Timestamp time.Time `json:"timestamp"` // Set by the collector on receipt.
}

// Valid reports whether the reading carries a real measurement.
func (r Reading) Valid() bool {
	return r.Distance >= 0 && r.Fill >= 0
}

// Calibration holds the distances measured at installation for a full and an empty container.
type Calibration struct {
	FullDistance  float64 `json:"full_distance" yaml:"full_distance"`
	EmptyDistance float64 `json:"empty_distance" yaml:"empty_distance"`
}

// DefaultCalibration matches the reference bin: 4 cm when full, 100 cm when empty.
var DefaultCalibration = Calibration{FullDistance: 4.0, EmptyDistance: 100.0}

// Validate checks that the empty distance lies beyond the full distance.
func (c Calibration) Validate() error {
	if c.EmptyDistance <= c.FullDistance {
		return fmt.Errorf("full=%.1f empty=%.1f: %w", c.FullDistance, c.EmptyDistance, errs.ErrInvalidCalibration)
	}
	return nil
}

// FillPercent maps a distance onto [0,100] linearly between the calibration bounds.
// The rounding adds 0.5 and truncates, and the clamp after it absorbs any overshoot.
func (c Calibration) FillPercent(distance float64) int {
	if distance < 0 {
		return UnknownFill
	}
	if distance <= c.FullDistance {
		return 100
	}
	if distance >= c.EmptyDistance {
		return 0
	}

	pct := ((c.EmptyDistance - distance) / (c.EmptyDistance - c.FullDistance)) * 100.0
	return Clamp(int(pct+0.5), 0, 100)
}

// FormatDistance renders d with every significant digit and at least one decimal,
// so 52 prints as "52.0" and 52.25 as "52.25".
func FormatDistance(d float64) string {
	s := strconv.FormatFloat(d, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
