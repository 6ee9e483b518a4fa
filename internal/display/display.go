// Package display renders readings for a four-digit 7-segment display.
package display

import (
	"strconv"

	"github.com/and161185/fill-monitor/model"
	"go.uber.org/zap"
)

// Segment bits, TM1637 order.
const (
	segA byte = 1 << iota
	segB
	segC
	segD
	segE
	segF
	segG
)

var digits = [10]byte{
	segA | segB | segC | segD | segE | segF,        // 0
	segB | segC,                                    // 1
	segA | segB | segD | segE | segG,               // 2
	segA | segB | segC | segD | segG,               // 3
	segB | segC | segF | segG,                      // 4
	segA | segC | segD | segF | segG,               // 5
	segA | segC | segD | segE | segF | segG,        // 6
	segA | segB | segC,                             // 7
	segA | segB | segC | segD | segE | segF | segG, // 8
	segA | segB | segC | segD | segF | segG,        // 9
}

var (
	dashes = [4]byte{segG, segG, segG, segG}
	full   = [4]byte{
		segA | segE | segF | segG,        // F
		segB | segC | segD | segE | segF, // U
		segD | segE | segF,               // L
		segD | segE | segF,               // L
	}
)

// Display shows a reading on the device. Blink flashes the activity LED once
// per measurement, whether or not it produced an echo.
type Display interface {
	Show(r model.Reading)
	Blink()
}

// Segments returns the four segment masks for r.
func Segments(r model.Reading) [4]byte {
	if !r.Valid() {
		return dashes
	}
	if r.Fill > 99 {
		return full
	}

	var out [4]byte
	n := r.Fill
	for i := 3; i >= 0; i-- {
		out[i] = digits[n%10]
		n /= 10
		if n == 0 {
			break
		}
	}
	return out
}

// Text returns what the display shows for r, blanks as spaces.
func Text(r model.Reading) string {
	if !r.Valid() {
		return "----"
	}
	if r.Fill > 99 {
		return "FULL"
	}
	s := strconv.Itoa(r.Fill)
	for len(s) < 4 {
		s = " " + s
	}
	return s
}

// LogDisplay writes what the panel would show to the logger.
type LogDisplay struct {
	logger *zap.SugaredLogger
}

// NewLogDisplay creates a LogDisplay.
func NewLogDisplay(logger *zap.SugaredLogger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

// Blink logs the LED flash at debug level.
func (d *LogDisplay) Blink() {
	d.logger.Debug("blink")
}

// Show logs the rendered text and the raw reading.
func (d *LogDisplay) Show(r model.Reading) {
	d.logger.Infow("display", "text", Text(r), "distance", r.Distance, "fill", r.Fill)
}
