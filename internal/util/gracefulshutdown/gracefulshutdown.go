/*
Copyright 2025 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package gracefulshutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// GracefulShutdown couples a signal-cancelable context with a wait group so
// that a binary can drain its background goroutines before exiting.
type GracefulShutdown struct {
	ctx    context.Context
	cancel context.CancelFunc
	name   string

	once      sync.Once
	readyOnce sync.Once
	wg        *sync.WaitGroup

	// ready is closed once all WaitGroup.Add() calls have been made. Waiting
	// for it avoids the race between Add() and Wait() during startup.
	ready chan struct{}

	// exitFunc is os.Exit in production and a capture func in tests.
	exitFunc func(int)
}

// NewWithExit creates a GracefulShutdown with a custom exit function, which
// tests use to observe the exit code instead of terminating the process.
func NewWithExit(name string, exitFunc func(int)) *GracefulShutdown {
	// 1. initialize a context cancelable by SIGTERM, SIGINT or SIGKILL.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt, os.Kill)

	gs := &GracefulShutdown{
		ctx:      ctx,
		cancel:   cancel,
		name:     name,
		wg:       &sync.WaitGroup{},
		ready:    make(chan struct{}),
		exitFunc: exitFunc,
	}

	// 2. ensure Shutdown runs at least once when the context is done. The
	// select also fires when the context is cancelled before Ready() was
	// called, so a misbehaving caller cannot leak this goroutine.
	go func() {
		select {
		case <-gs.ready:
			<-ctx.Done()
			gs.Shutdown(0)
		case <-ctx.Done():
			slog.Warn("context cancelled before Ready() was called, shutting down anyway", "name", name)
			gs.Shutdown(0)
		}
	}()

	return gs
}

// New creates a GracefulShutdown whose context is cancelled by SIGTERM, SIGINT
// or SIGKILL, and which calls os.Exit once all registered goroutines are done.
func New(name string) *GracefulShutdown {
	return NewWithExit(name, os.Exit)
}

// Shutdown cancels the context, waits for registered goroutines and exits.
// It is safe to call from multiple goroutines; only the first call runs.
func (s *GracefulShutdown) Shutdown(exitCode int) {
	s.once.Do(func() {
		slog.InfoContext(s.ctx, "shutting down", "name", s.name)

		s.cancel()
		s.wg.Wait()
		s.exitFunc(exitCode)
	})
}

// Context returns the signal-cancelable context.
func (s *GracefulShutdown) Context() context.Context {
	return s.ctx
}

// CancelFunc returns the cancel function of the underlying context.
func (s *GracefulShutdown) CancelFunc() context.CancelFunc {
	return s.cancel
}

// WaitGroup returns the wait group Shutdown waits on.
func (s *GracefulShutdown) WaitGroup() *sync.WaitGroup {
	return s.wg
}

// Ready signals that all WaitGroup.Add() calls have been made. It must be
// called after startup registered its goroutines; it is safe to call twice.
func (s *GracefulShutdown) Ready() {
	s.readyOnce.Do(func() {
		close(s.ready)
	})
}
