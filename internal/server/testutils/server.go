// Package testutils builds collectors backed by in-memory storage for tests.
package testutils

import (
	"sync"

	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/internal/server"
	"github.com/and161185/fill-monitor/model"
	"github.com/and161185/fill-monitor/storage"
	"github.com/and161185/fill-monitor/storage/inmemory"
	"go.uber.org/zap"
)

// MemLog is a storage.Log that keeps appended readings in memory.
// A non-nil Err makes every Append fail.
type MemLog struct {
	mu       sync.Mutex
	readings []model.Reading
	closed   bool
	Err      error
}

func (l *MemLog) Append(r model.Reading) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.readings = append(l.readings, r)
	return nil
}

func (l *MemLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *MemLog) Readings() []model.Reading {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Reading, len(l.readings))
	copy(out, l.readings)
	return out
}

func (l *MemLog) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// TestServer bundles a collector with the storage it writes to.
type TestServer struct {
	*server.Server
	Slot   *inmemory.Slot
	Log    *MemLog
	Config *config.CollectorConfig
}

func TestConfig() *config.CollectorConfig {
	return &config.CollectorConfig{
		Addr:           "127.0.0.1:0",
		LogPath:        "./dustbin_log.txt",
		RefreshSeconds: 3,
		LogLevel:       "info",
	}
}

// NewTestServer returns a collector with an empty slot and log. journal may be nil.
func NewTestServer(journal storage.Journal) *TestServer {
	slot := inmemory.NewSlot()
	log := &MemLog{}
	cfg := TestConfig()
	return &TestServer{
		Server: server.NewServer(slot, log, journal, cfg, zap.NewNop().Sugar()),
		Slot:   slot,
		Log:    log,
		Config: cfg,
	}
}
