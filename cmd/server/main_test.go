package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_InFlightRequestSurvivesShutdownSignal(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	handlerErr := make(chan error, 1)

	srv := newServer("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		handlerErr <- r.Context().Err()
		w.WriteHeader(http.StatusOK)
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(ln)

	signalCtx, stop := context.WithCancel(context.Background())
	shutdownDone := make(chan error, 1)
	go func() {
		<-signalCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	respCh := make(chan *http.Response, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err == nil {
			respCh <- resp
		}
		close(respCh)
	}()

	<-entered
	stop()
	// give Shutdown time to start draining before the handler returns
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.NoError(t, <-handlerErr)
	resp, ok := <-respCh
	require.True(t, ok, "request completes during shutdown")
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, <-shutdownDone)
}

func TestNewServer_BaseContextIsBackground(t *testing.T) {
	srv := newServer(":0", http.NotFoundHandler())

	require.NotNil(t, srv.BaseContext)
	ctx := srv.BaseContext(nil)
	assert.NoError(t, ctx.Err())
	assert.Nil(t, ctx.Done())
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
}
