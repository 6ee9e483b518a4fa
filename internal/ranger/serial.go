// Package ranger provides sampler.Ranger implementations: a serial bridge to the
// microcontroller driving the HC-SR04 transducer, and a scripted source.
package ranger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the rate the bridge firmware talks at.
	DefaultBaudRate = 115200
	// readMargin is added to the pulse timeout to cover the bridge's serial round trip.
	readMargin = 50 * time.Millisecond
)

var triggerCmd = []byte("T\n")

// ErrNotOpen is returned by Echo before Open or after Close.
var ErrNotOpen = errors.New("serial ranger not open")

// port is the subset of serial.Port the ranger relies on.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Port describes a serial port available on the host.
type Port struct {
	Name string
}

// Ports returns the serial ports available on the host.
func Ports() ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	result := make([]Port, 0, len(names))
	for _, name := range names {
		result = append(result, Port{Name: name})
	}
	return result, nil
}

// Serial asks the bridge for one echo per call. The bridge answers each "T" line with
// the echo high time in microseconds, or 0 when its pulseIn timed out.
type Serial struct {
	name     string
	baudRate int

	mu   sync.Mutex
	conn port
}

// NewSerial creates a ranger for the named port. It is not opened yet.
func NewSerial(name string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{name: name, baudRate: baudRate}
}

// Open opens the serial port.
func (s *Serial) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}
	p, err := serial.Open(s.name, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.name, err)
	}
	s.conn = p
	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Echo triggers one ping and waits at most timeout plus a small margin for the answer.
func (s *Serial) Echo(ctx context.Context, timeout time.Duration) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return 0, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// drop anything left over from a reply that arrived late
	if err := s.conn.ResetInputBuffer(); err != nil {
		return 0, fmt.Errorf("reset input: %w", err)
	}
	if _, err := s.conn.Write(triggerCmd); err != nil {
		return 0, fmt.Errorf("write trigger: %w", err)
	}

	line, err := readLine(s.conn, timeout+readMargin)
	if err != nil {
		return 0, err
	}
	return parseEcho(line)
}

func readLine(p port, wait time.Duration) (string, error) {
	deadline := time.Now().Add(wait)
	var buf bytes.Buffer
	chunk := make([]byte, 32)

	for {
		left := time.Until(deadline)
		if left <= 0 {
			return "", fmt.Errorf("read echo: %w", context.DeadlineExceeded)
		}
		if err := p.SetReadTimeout(left); err != nil {
			return "", fmt.Errorf("set read timeout: %w", err)
		}

		n, err := p.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if i := bytes.IndexByte(buf.Bytes(), '\n'); i >= 0 {
				return strings.TrimSpace(string(buf.Bytes()[:i])), nil
			}
		}
		if err != nil {
			return "", fmt.Errorf("read echo: %w", err)
		}
		if n == 0 {
			// serial reads return 0, nil once the read timeout expires
			return "", fmt.Errorf("read echo: %w", context.DeadlineExceeded)
		}
	}
}

func parseEcho(line string) (time.Duration, error) {
	us, err := strconv.ParseUint(line, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse echo %q: %w", line, err)
	}
	return time.Duration(us) * time.Microsecond, nil
}
