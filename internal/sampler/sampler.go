// Package sampler turns raw ultrasonic echoes into filtered fill-level readings.
package sampler

import (
	"context"
	"time"

	"github.com/and161185/fill-monitor/model"
	"go.uber.org/zap"
)

// Speed of sound in cm/µs; the echo covers the distance twice.
const soundCMPerMicrosecond = 0.0343

const (
	DefaultPulseTimeout = 30 * time.Millisecond
	DefaultSampleGap    = 40 * time.Millisecond
)

// Ranger triggers one ultrasonic ping and reports the echo pulse width.
// A zero duration means no echo arrived within timeout.
type Ranger interface {
	Echo(ctx context.Context, timeout time.Duration) (time.Duration, error)
}

// Sampler measures distance through a Ranger and derives fill levels.
type Sampler struct {
	ranger       Ranger
	calibration  model.Calibration
	pulseTimeout time.Duration
	sampleGap    time.Duration
	logger       *zap.SugaredLogger

	sleep func(ctx context.Context, d time.Duration)
}

// NewSampler creates a Sampler. Zero durations fall back to the defaults.
func NewSampler(r Ranger, cal model.Calibration, pulseTimeout, sampleGap time.Duration, logger *zap.SugaredLogger) *Sampler {
	if pulseTimeout <= 0 {
		pulseTimeout = DefaultPulseTimeout
	}
	if sampleGap <= 0 {
		sampleGap = DefaultSampleGap
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Sampler{
		ranger:       r,
		calibration:  cal,
		pulseTimeout: pulseTimeout,
		sampleGap:    sampleGap,
		logger:       logger,
		sleep:        sleepCtx,
	}
}

// MeasureOnce returns one raw distance in cm or model.InvalidDistance.
func (s *Sampler) MeasureOnce(ctx context.Context) float64 {
	width, err := s.ranger.Echo(ctx, s.pulseTimeout)
	if err != nil {
		s.logger.Debugf("echo failed: %v", err)
		return model.InvalidDistance
	}
	if width <= 0 || width > s.pulseTimeout {
		return model.InvalidDistance
	}
	return DistanceCM(width)
}

// MeasureFiltered takes three samples and returns their median.
// A single invalid sample invalidates the whole result.
func (s *Sampler) MeasureFiltered(ctx context.Context) float64 {
	var samples [3]float64
	for i := range samples {
		if i > 0 {
			s.sleep(ctx, s.sampleGap)
		}
		samples[i] = s.MeasureOnce(ctx)
	}

	for _, v := range samples {
		if v < 0 {
			return model.InvalidDistance
		}
	}
	return Median3(samples[0], samples[1], samples[2])
}

// Sample produces a fresh reading for this cycle.
func (s *Sampler) Sample(ctx context.Context) model.Reading {
	d := s.MeasureFiltered(ctx)
	return model.Reading{
		Distance: d,
		Fill:     s.calibration.FillPercent(d),
	}
}

// DistanceCM converts an echo pulse width to a one-way distance.
func DistanceCM(width time.Duration) float64 {
	us := float64(width) / float64(time.Microsecond)
	return us * soundCMPerMicrosecond / 2.0
}

// Median3 returns the middle value of three.
func Median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return b
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
