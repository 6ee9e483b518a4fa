// Package client implements the sensor node: it samples the bin on a timer and
// pushes each reading to the collector.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/internal/display"
	"github.com/and161185/fill-monitor/internal/errs"
	"github.com/and161185/fill-monitor/model"
	"go.uber.org/zap"
)

// maxLoggedBody caps how much of the collector's reply ends up in the log.
const maxLoggedBody = 256

type sampler interface {
	Sample(ctx context.Context) model.Reading
}

type keeper interface {
	Ensure(ctx context.Context) bool
}

// Client samples, displays and reports readings.
type Client struct {
	sampler    sampler
	keeper     keeper
	display    display.Display
	config     *config.SensorConfig
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates a client with an HTTP client bounded by cfg.ClientTimeout.
func NewClient(s sampler, k keeper, d display.Display, cfg *config.SensorConfig, logger *zap.SugaredLogger) *Client {
	return NewClientWithHTTP(s, k, d, cfg, logger, NewHTTPClient(cfg))
}

// NewClientWithHTTP creates a client around a ready http.Client.
func NewClientWithHTTP(s sampler, k keeper, d display.Display, cfg *config.SensorConfig, logger *zap.SugaredLogger, hc *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		sampler:    s,
		keeper:     k,
		display:    d,
		config:     cfg,
		httpClient: hc,
		logger:     logger,
	}
}

// NewHTTPClient returns the client used for POSTs.
func NewHTTPClient(cfg *config.SensorConfig) *http.Client {
	return &http.Client{Timeout: cfg.ClientTimeout}
}

// Run takes a reading every SampleInterval until ctx is done.
func (clnt *Client) Run(ctx context.Context) error {
	t := time.NewTicker(clnt.config.SampleInterval)
	defer t.Stop()

	clnt.logger.Infof("sampling every %s, reporting to %s", clnt.config.SampleInterval, clnt.config.ServerAddr)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			clnt.Cycle(ctx)
		}
	}
}

// Cycle runs one sample-display-report pass. Every failure ends the cycle quietly;
// the next tick starts from scratch.
func (clnt *Client) Cycle(ctx context.Context) {
	r := clnt.sampler.Sample(ctx)
	if clnt.display != nil {
		clnt.display.Blink()
		clnt.display.Show(r)
	}

	if !r.Valid() {
		clnt.logger.Warnf("no echo, skipping report")
		return
	}

	if err := clnt.Report(ctx, r); err != nil {
		clnt.logger.Warnf("report: %v", err)
	}
}

// Report sends r once. A reading that cannot be sent is dropped.
func (clnt *Client) Report(ctx context.Context, r model.Reading) error {
	if !clnt.keeper.Ensure(ctx) {
		return errs.ErrNotConnected
	}

	code, body, err := clnt.postForm(ctx, "/data", EncodeReading(r))
	if err != nil {
		return fmt.Errorf("post reading: %w", err)
	}
	clnt.logger.Infof("POST /data distance=%.1f fill=%d -> %d %q", r.Distance, r.Fill, code, body)
	return nil
}

// EncodeReading renders the wire form of r: distance with one decimal, fill as an integer.
func EncodeReading(r model.Reading) string {
	v := url.Values{}
	v.Set("distance", strconv.FormatFloat(r.Distance, 'f', 1, 64))
	v.Set("fill", strconv.Itoa(r.Fill))
	return v.Encode()
}

// postForm issues one POST. Any HTTP response counts as delivered; the status is informational.
func (clnt *Client) postForm(ctx context.Context, path, form string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, clnt.config.ServerAddr+path, strings.NewReader(form))
	if err != nil {
		return 0, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := clnt.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	if err != nil {
		clnt.logger.Debugf("read response body: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, strings.TrimSpace(string(b)), nil
}
