package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/model"
	"github.com/and161185/fill-monitor/storage/filelog"
	"github.com/and161185/fill-monitor/storage/inmemory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestIngestHandler_RepeatedReadingIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dustbin_log.txt")
	readings, err := filelog.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = readings.Close() })

	slot := inmemory.NewSlot()
	cfg := &config.CollectorConfig{Addr: "127.0.0.1:0", LogPath: path, RefreshSeconds: 3}
	srv := NewServer(slot, readings, nil, cfg, zap.NewNop().Sugar())

	received := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	srv.now = func() time.Time { return received }
	want := model.Reading{Distance: 52.0, Fill: 50, Timestamp: received}

	h := srv.Router()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader("distance=52.0&fill=50"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		got, ok := slot.Get()
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(b), "\n")
	require.Len(t, lines, 3) // two lines and the empty tail
	require.Empty(t, lines[2])
	require.Equal(t, lines[0], lines[1])
	require.Equal(t, "2025-03-14 09:26:53 | Distance: 52.0 cm | Fill: 50%\n", lines[0])
}
