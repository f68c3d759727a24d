package server

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"testing"
	"time"
)

func newIdleServer() *GracefulServer {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return NewGracefulServer("127.0.0.1:0", handler, nil)
}

func TestShutdownRunsHooksInOrder(t *testing.T) {
	gs := newIdleServer()

	var order []string
	gs.OnShutdown(func(context.Context) error {
		order = append(order, "bus")
		return nil
	})
	gs.OnShutdown(func(context.Context) error {
		order = append(order, "store")
		return nil
	})

	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if len(order) != 2 || order[0] != "bus" || order[1] != "store" {
		t.Errorf("Hook order = %v", order)
	}
}

func TestShutdownReportsFirstHookError(t *testing.T) {
	gs := newIdleServer()
	hookErr := errors.New("close failed")
	ran := false
	gs.OnShutdown(func(context.Context) error { return hookErr })
	gs.OnShutdown(func(context.Context) error { ran = true; return errors.New("other") })

	if err := gs.Shutdown(time.Second); !errors.Is(err, hookErr) {
		t.Errorf("Shutdown error = %v, want %v", err, hookErr)
	}
	if !ran {
		t.Error("Later hook did not run after earlier hook failed")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	gs := newIdleServer()
	count := 0
	gs.OnShutdown(func(context.Context) error { count++; return nil })

	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("First shutdown failed: %v", err)
	}
	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("Second shutdown failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Hook ran %d times, want 1", count)
	}
}

func TestIsShuttingDown(t *testing.T) {
	gs := newIdleServer()

	if gs.IsShuttingDown() {
		t.Error("New server reports shutting down")
	}
	select {
	case <-gs.ShutdownChannel():
		t.Error("Shutdown channel closed before shutdown")
	default:
	}

	if err := gs.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	if !gs.IsShuttingDown() {
		t.Error("Server does not report shutting down")
	}
	select {
	case <-gs.ShutdownChannel():
	case <-time.After(time.Second):
		t.Error("Shutdown channel not closed")
	}
}

func TestReloadConfig(t *testing.T) {
	gs := newIdleServer()

	// No reload function configured is not an error.
	if err := gs.ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig without function failed: %v", err)
	}

	called := false
	gs.SetConfigReloadFunc(func() error { called = true; return nil })
	if err := gs.ReloadConfig(); err != nil {
		t.Fatalf("ReloadConfig failed: %v", err)
	}
	if !called {
		t.Error("Reload function not invoked")
	}

	reloadErr := errors.New("bad config")
	gs.SetConfigReloadFunc(func() error { return reloadErr })
	if err := gs.ReloadConfig(); !errors.Is(err, reloadErr) {
		t.Errorf("ReloadConfig error = %v, want %v", err, reloadErr)
	}
}

func TestSIGHUPTriggersReload(t *testing.T) {
	gs := newIdleServer()

	reloaded := make(chan struct{}, 1)
	gs.SetConfigReloadFunc(func() error {
		reloaded <- struct{}{}
		return nil
	})

	go gs.handleSignals()
	time.Sleep(50 * time.Millisecond)

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGHUP); err != nil {
		t.Fatalf("Failed to send SIGHUP: %v", err)
	}

	select {
	case <-reloaded:
	case <-time.After(2 * time.Second):
		t.Fatal("SIGHUP did not trigger a config reload")
	}
	if gs.IsShuttingDown() {
		t.Error("Server should not shut down on SIGHUP")
	}
}
