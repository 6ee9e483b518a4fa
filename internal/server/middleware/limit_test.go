package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestBodyLimit_OversizedBodyIsRejected(t *testing.T) {
	core, obs := observer.New(zap.InfoLevel)
	logger := zap.New(core).Sugar()

	reached := false
	h := BodyLimit(16)(LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	})))

	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(strings.Repeat("a", 64)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.False(t, reached)
	entries := obs.FilterMessage("request body too large").All()
	require.Len(t, entries, 1)
	require.EqualValues(t, 16, entries[0].ContextMap()["limit"])
}

func TestBodyLimit_SmallBodyPasses(t *testing.T) {
	h := BodyLimit(MaxBodyBytes)(LogMiddleware(zap.NewNop().Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "50", r.PostForm.Get("fill"))
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader("distance=52.0&fill=50"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}
