package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Logout(t *testing.T) {
	var got *http.Request
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", time.Second)
	require.NoError(t, c.Logout(context.Background(), "tok-123"))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/logout", got.URL.Path)
	assert.Equal(t, "Bearer tok-123", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
	assert.Empty(t, body)
}

func TestClient_LogoutWithoutBearer(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	require.NoError(t, NewClient(ts.URL, time.Second).Logout(context.Background(), ""))
	assert.Empty(t, auth)
}

func TestClient_LogoutErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer ts.Close()

	err := NewClient(ts.URL, time.Second).Logout(context.Background(), "t")
	assert.ErrorContains(t, err, "status 500")
}

func TestClient_LogoutTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	start := time.Now()
	err := NewClient(ts.URL, 50*time.Millisecond).Logout(context.Background(), "t")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDetach_DoesNotBlock(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	n := NotifierFunc(func(ctx context.Context, bearer string) error {
		<-block
		return nil
	})

	start := time.Now()
	p := Detach(context.Background(), n, "t")
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.DeadlineExceeded, "pending finished before the notifier returned")
}

func TestDetach_IgnoresCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	seen := make(chan error, 1)
	n := NotifierFunc(func(ctx context.Context, bearer string) error {
		time.Sleep(20 * time.Millisecond)
		seen <- ctx.Err()
		return nil
	})

	p := Detach(ctx, n, "t")
	cancel()
	require.NoError(t, p.Wait(context.Background()))
	assert.NoError(t, <-seen)
}

func TestDetach_RecoversPanic(t *testing.T) {
	n := NotifierFunc(func(context.Context, string) error { panic("boom") })
	err := Detach(context.Background(), n, "").Wait(context.Background())
	assert.EqualError(t, err, "notifier panicked")
}

func TestPending_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	n := NotifierFunc(func(context.Context, string) error {
		<-block
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, Detach(context.Background(), n, "").Wait(ctx), context.DeadlineExceeded)
}

func TestPending_DiscardResultLogsAtDebug(t *testing.T) {
	var buf syncBuffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	p := Detach(context.Background(), NotifierFunc(func(context.Context, string) error {
		return errors.New("network down")
	}), "")
	p.DiscardResult(log)

	assert.Eventually(t, func() bool {
		return bytes.Contains(buf.Bytes(), []byte("logout notification dropped"))
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, buf.String(), `"level":"debug"`)
	assert.Contains(t, buf.String(), "network down")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Logout(context.Background(), "t"))
}
