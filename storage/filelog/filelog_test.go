package filelog

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/and161185/fill-monitor/model"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	got := FormatLine(model.Reading{Distance: 4.0, Fill: 100, Timestamp: ts})
	require.Equal(t, "2025-03-14 09:26:53 | Distance: 4.0 cm | Fill: 100%\n", got)
}

func TestFormatLine_KeepsAcceptedPrecision(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	got := FormatLine(model.Reading{Distance: 52.25, Fill: 50, Timestamp: ts})
	require.Equal(t, "2025-03-14 09:26:53 | Distance: 52.25 cm | Fill: 50%\n", got)
}

func TestAppend_KeepsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dustbin_log.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier line\n"), 0644))

	l, err := Open(path)
	require.NoError(t, err)
	r := model.Reading{Distance: 52.0, Fill: 50, Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)}
	require.NoError(t, l.Append(r))
	require.NoError(t, l.Append(r))
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "earlier line", lines[0])
	require.Equal(t, lines[1], lines[2])
	require.Equal(t, "2025-01-01 00:00:00 | Distance: 52.0 cm | Fill: 50%", lines[1])
}

func TestAppend_AfterClose(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "log.txt"))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.ErrorIs(t, l.Append(model.Reading{}), os.ErrClosed)
	require.NoError(t, l.Close())
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "log.txt"))
	require.Error(t, err)
}

func TestAppend_ConcurrentLinesStayWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = l.Append(model.Reading{Distance: float64(i), Fill: j, Timestamp: time.Now()})
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
		parts := strings.Split(sc.Text(), " | ")
		require.Len(t, parts, 3, sc.Text())
		require.True(t, strings.HasPrefix(parts[1], "Distance: "))
		require.True(t, strings.HasPrefix(parts[2], "Fill: "))
	}
	require.Equal(t, 400, n)
}
