package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Defaults(t *testing.T) {
	i := New("", "", "")
	require.Equal(t, Info{Version: "N/A", Date: "N/A", Commit: "N/A"}, i)
}

func TestLog(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)

	New("v1", "2025-09-06", "deadbeef").Log(zap.New(core).Sugar())

	entries := obs.FilterMessage("build info").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "v1", fields["version"])
	require.Equal(t, "2025-09-06", fields["date"])
	require.Equal(t, "deadbeef", fields["commit"])
}
