package ranger

import (
	"context"
	"sync"
	"time"
)

// Script replays a fixed sequence of echo widths, wrapping around at the end.
// It stands in for the transducer in simulation mode and in tests.
type Script struct {
	mu     sync.Mutex
	widths []time.Duration
	pos    int
	err    error
}

// NewScript creates a Script over widths. An empty script never echoes.
func NewScript(widths ...time.Duration) *Script {
	return &Script{widths: widths}
}

// FromDistances builds a Script whose echoes correspond to the given distances in cm.
// Negative distances produce no echo.
func FromDistances(cm ...float64) *Script {
	widths := make([]time.Duration, len(cm))
	for i, d := range cm {
		if d < 0 {
			continue
		}
		widths[i] = WidthFor(d)
	}
	return NewScript(widths...)
}

// WidthFor returns the round-trip echo width for a distance in cm.
func WidthFor(cm float64) time.Duration {
	return time.Duration(cm * 2 / 0.0343 * float64(time.Microsecond))
}

// FailWith makes every subsequent Echo return err.
func (s *Script) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Echo returns the next width in the script, or zero when it exceeds timeout.
func (s *Script) Echo(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if len(s.widths) == 0 {
		return 0, nil
	}
	w := s.widths[s.pos%len(s.widths)]
	s.pos++
	if w > timeout {
		return 0, nil
	}
	return w, nil
}

// Simulated returns a Script that walks a bin from empty to full and back,
// with one blind reading in between. Every distance is repeated three times
// so each filtered sample sees a steady echo.
func Simulated() *Script {
	steps := []float64{100, 88, 76, 64, 52, 40, -1, 28, 16, 4, 2}
	cm := make([]float64, 0, len(steps)*3)
	for _, d := range steps {
		cm = append(cm, d, d, d)
	}
	return FromDistances(cm...)
}
