package connectivity

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os/exec"
	"time"
)

// DefaultProbeTimeout bounds a single reachability probe.
const DefaultProbeTimeout = time.Second

// TCPLink treats the network as up when the collector accepts a TCP connection.
// Reconnect runs an optional shell hook, e.g. a Wi-Fi connect command.
type TCPLink struct {
	addr         string
	hook         string
	probeTimeout time.Duration
	dialer       net.Dialer
}

// NewTCPLink builds a link probing the host:port of serverURL.
func NewTCPLink(serverURL, hook string, probeTimeout time.Duration) (*TCPLink, error) {
	addr, err := hostPort(serverURL)
	if err != nil {
		return nil, err
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &TCPLink{addr: addr, hook: hook, probeTimeout: probeTimeout}, nil
}

// Addr returns the probed address.
func (l *TCPLink) Addr() string { return l.addr }

// Up dials the collector once.
func (l *TCPLink) Up(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, l.probeTimeout)
	defer cancel()

	conn, err := l.dialer.DialContext(ctx, "tcp", l.addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Reconnect runs the hook, if any, bounded by ctx.
func (l *TCPLink) Reconnect(ctx context.Context) error {
	if l.hook == "" {
		return nil
	}
	out, err := exec.CommandContext(ctx, "sh", "-c", l.hook).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reconnect hook: %w: %s", err, out)
	}
	return nil
}

func hostPort(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server url %q has no host", serverURL)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	switch u.Scheme {
	case "https":
		return net.JoinHostPort(u.Hostname(), "443"), nil
	default:
		return net.JoinHostPort(u.Hostname(), "80"), nil
	}
}
