package connectivity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeLink struct {
	up         bool
	upAfter    int // Up starts returning true after this many calls following a reconnect
	upCalls    int
	reconnects int
	err        error
}

func (f *fakeLink) Up(_ context.Context) bool {
	if f.reconnects > 0 && f.upAfter > 0 {
		f.upCalls++
		if f.upCalls >= f.upAfter {
			f.up = true
		}
	}
	return f.up
}

func (f *fakeLink) Reconnect(_ context.Context) error {
	f.reconnects++
	return f.err
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Sleep(_ context.Context, d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestKeeper(l Link, c *fakeClock) *Keeper {
	k := NewKeeper(l, 10*time.Second, 8*time.Second, nil)
	k.Now = c.Now
	k.Sleep = c.Sleep
	return k
}

func TestEnsure_AlreadyUp(t *testing.T) {
	l := &fakeLink{up: true}
	k := newTestKeeper(l, &fakeClock{now: time.Unix(0, 0)})

	require.True(t, k.Ensure(context.Background()))
	require.Zero(t, l.reconnects)
	_, attempted := k.LastAttempt()
	require.False(t, attempted)
}

func TestEnsure_ReconnectSucceedsWithinWindow(t *testing.T) {
	l := &fakeLink{upAfter: 3}
	c := &fakeClock{now: time.Unix(0, 0)}
	k := newTestKeeper(l, c)

	require.True(t, k.Ensure(context.Background()))
	require.Equal(t, 1, l.reconnects)
}

func TestEnsure_WindowIsBounded(t *testing.T) {
	l := &fakeLink{}
	c := &fakeClock{now: time.Unix(0, 0)}
	k := newTestKeeper(l, c)

	start := c.now
	require.False(t, k.Ensure(context.Background()))
	require.Equal(t, 1, l.reconnects)
	require.LessOrEqual(t, c.now.Sub(start), 8*time.Second+DefaultPollStep)
}

func TestEnsure_ReconnectErrorStillPolls(t *testing.T) {
	l := &fakeLink{upAfter: 1, err: errors.New("hook failed")}
	k := newTestKeeper(l, &fakeClock{now: time.Unix(0, 0)})

	require.True(t, k.Ensure(context.Background()))
}

func TestEnsure_RateLimited(t *testing.T) {
	l := &fakeLink{}
	c := &fakeClock{now: time.Unix(0, 0)}
	k := newTestKeeper(l, c)
	ctx := context.Background()

	require.False(t, k.Ensure(ctx))
	require.Equal(t, 1, l.reconnects)

	// rapid checks inside the cooldown never trigger another attempt
	for i := 0; i < 50; i++ {
		c.now = c.now.Add(10 * time.Millisecond)
		require.False(t, k.Ensure(ctx))
	}
	require.Equal(t, 1, l.reconnects)
}

func TestEnsure_AtMostOncePerCooldown(t *testing.T) {
	l := &fakeLink{}
	c := &fakeClock{now: time.Unix(0, 0)}
	k := newTestKeeper(l, c)
	ctx := context.Background()

	begin := c.now
	for i := 0; i < 200; i++ {
		k.Ensure(ctx)
		c.now = c.now.Add(500 * time.Millisecond)
	}
	elapsed := c.now.Sub(begin)
	maxAttempts := int(elapsed/(10*time.Second)) + 1
	require.LessOrEqual(t, l.reconnects, maxAttempts)
	require.Greater(t, l.reconnects, 1)
}

func TestTCPLink(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	l, err := NewTCPLink(ts.URL, "", 0)
	require.NoError(t, err)
	require.True(t, l.Up(context.Background()))
	require.NoError(t, l.Reconnect(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	l, err = NewTCPLink("http://"+addr, "exit 3", 100*time.Millisecond)
	require.NoError(t, err)
	require.False(t, l.Up(context.Background()))
	require.Error(t, l.Reconnect(context.Background()))
}

func TestHostPort(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  bool
	}{
		{"http://10.0.0.2:5000", "10.0.0.2:5000", false},
		{"http://collector.lan", "collector.lan:80", false},
		{"https://collector.lan", "collector.lan:443", false},
		{"not a url", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := hostPort(tc.in)
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
