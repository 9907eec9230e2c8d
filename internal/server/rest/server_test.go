package rest

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/meetscribe/internal/logging"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewServer("127.0.0.1:0", logging.Discard(), nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewServer("127.0.0.1:99999", logging.Discard(), nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestCallbackTarget_KeepsExistingQuery(t *testing.T) {
	srv := NewServer("", logging.Discard(), nil, Options{CallbackURL: "http://app.test/cb?from=api"})

	got, err := srv.callbackTarget(map[string][]string{"token": {"t 1"}})
	if err != nil {
		t.Fatalf("callbackTarget error: %v", err)
	}
	if got != "http://app.test/cb?from=api&token=t+1" {
		t.Fatalf("unexpected target %q", got)
	}
}
