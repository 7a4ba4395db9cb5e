package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer mimics http.Server: Start returns ErrServerClosed as soon as
// Shutdown begins, while Shutdown keeps running until in-flight work drains.
type fakeServer struct {
	closed   chan struct{}
	drain    time.Duration
	drained  atomic.Bool
	startErr error
}

func (f *fakeServer) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	close(f.closed)
	time.Sleep(f.drain)
	f.drained.Store(true)
	return nil
}

func TestServe_WaitsForShutdownToDrain(t *testing.T) {
	srv := &fakeServer{closed: make(chan struct{}), drain: 50 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv, time.Second) }()
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
		assert.True(t, srv.drained.Load(), "serve returned before Shutdown finished")
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
}

func TestServe_StartError(t *testing.T) {
	boom := errors.New("address already in use")
	srv := &fakeServer{closed: make(chan struct{}), startErr: boom}

	err := serve(context.Background(), srv, time.Second)
	assert.ErrorIs(t, err, boom)
	assert.False(t, srv.drained.Load())
}
