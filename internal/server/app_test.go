package server

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/meetscribe/internal/server/config"
)

// syncBuffer guards the log buffer shared with the server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(addr string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.Addr = addr
	return c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	var logs syncBuffer
	app := NewApp(testConfig("127.0.0.1:0"), &logs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop after cancel")
	}

	out := logs.String()
	assert.True(t, strings.Contains(out, `"msg":"Starting HTTP server"`), out)
	assert.Contains(t, out, `"msg":"App stopped"`)
}

func TestApp_RunBadAddress(t *testing.T) {
	var logs syncBuffer
	app := NewApp(testConfig("127.0.0.1:99999"), &logs)

	assert.Error(t, app.Run(context.Background()))
	assert.Contains(t, logs.String(), "server stopped")
}
