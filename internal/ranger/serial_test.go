package ranger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePort struct {
	reply   []byte
	written bytes.Buffer
	resets  int
	closed  bool
}

func (f *fakePort) Read(p []byte) (int, error) {
	if len(f.reply) == 0 {
		return 0, nil
	}
	n := copy(p, f.reply)
	f.reply = f.reply[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error)          { return f.written.Write(p) }
func (f *fakePort) Close() error                         { f.closed = true; return nil }
func (f *fakePort) SetReadTimeout(_ time.Duration) error { return nil }
func (f *fakePort) ResetInputBuffer() error              { f.resets++; return nil }

func TestSerialEcho(t *testing.T) {
	fp := &fakePort{reply: []byte("1457\r\n")}
	s := NewSerial("/dev/null", 0)
	s.conn = fp

	w, err := s.Echo(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 1457*time.Microsecond, w)
	require.Equal(t, "T\n", fp.written.String())
	require.Equal(t, 1, fp.resets)
}

func TestSerialEcho_ReplyInChunks(t *testing.T) {
	fp := &chunkPort{parts: [][]byte{[]byte("29"), []byte("15"), []byte("\n")}}
	s := NewSerial("/dev/null", 0)
	s.conn = fp

	w, err := s.Echo(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 2915*time.Microsecond, w)
}

func TestSerialEcho_NoReply(t *testing.T) {
	s := NewSerial("/dev/null", 0)
	s.conn = &fakePort{}

	_, err := s.Echo(context.Background(), time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSerialEcho_Garbage(t *testing.T) {
	s := NewSerial("/dev/null", 0)
	s.conn = &fakePort{reply: []byte("ERR\n")}

	_, err := s.Echo(context.Background(), 30*time.Millisecond)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse echo")
}

func TestSerialEcho_NotOpen(t *testing.T) {
	s := NewSerial("/dev/null", 0)
	_, err := s.Echo(context.Background(), 30*time.Millisecond)
	require.True(t, errors.Is(err, ErrNotOpen))
}

func TestSerialClose(t *testing.T) {
	fp := &fakePort{}
	s := NewSerial("/dev/null", 9600)
	s.conn = fp

	require.NoError(t, s.Close())
	require.True(t, fp.closed)
	require.NoError(t, s.Close())
}

type chunkPort struct {
	fakePort
	parts [][]byte
}

func (c *chunkPort) Read(p []byte) (int, error) {
	if len(c.parts) == 0 {
		return 0, nil
	}
	n := copy(p, c.parts[0])
	c.parts = c.parts[1:]
	return n, nil
}
