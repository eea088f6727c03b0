//go:build unit

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

package gracefulshutdown_test

import (
	"sync"
	"testing"
	"time"

	"github.com/alexandremahdhaoui/testenv-vm/internal/util/gracefulshutdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	gs := gracefulshutdown.NewWithExit("test-server", func(int) {})
	require.NotNil(t, gs)

	ctx := gs.Context()
	require.NotNil(t, ctx)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be cancelled initially")
	default:
	}

	assert.NotNil(t, gs.CancelFunc())
	assert.NotNil(t, gs.WaitGroup())
}

func TestGracefulShutdown_Context(t *testing.T) {
	gs := gracefulshutdown.NewWithExit("test-server", func(int) {})

	ctx := gs.Context()
	require.NoError(t, ctx.Err())

	gs.CancelFunc()()

	<-ctx.Done()
	assert.Error(t, ctx.Err())
}

func TestGracefulShutdown_WaitGroup(t *testing.T) {
	gs := gracefulshutdown.NewWithExit("test-server", func(int) {})

	wg := gs.WaitGroup()
	require.NotNil(t, wg)

	completed := false
	wg.Add(1)
	go func() {
		defer wg.Done()
		completed = true
	}()
	wg.Wait()

	assert.True(t, completed)
}

// TestGracefulShutdown_Shutdown verifies Shutdown drains the wait group and
// forwards the exit code to the injected exit function.
func TestGracefulShutdown_Shutdown(t *testing.T) {
	tests := []struct {
		name       string
		exitCode   int
		wgAddCount int
	}{
		{
			name:     "shutdown with exit code 0",
			exitCode: 0,
		},
		{
			name:     "shutdown with exit code 1",
			exitCode: 1,
		},
		{
			name:       "shutdown waits for waitgroup",
			exitCode:   0,
			wgAddCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedExitCode int
			exitCalled := false
			gs := gracefulshutdown.NewWithExit("test", func(code int) {
				capturedExitCode = code
				exitCalled = true
			})

			for i := 0; i < tt.wgAddCount; i++ {
				gs.WaitGroup().Add(1)
				go func() {
					time.Sleep(10 * time.Millisecond)
					gs.WaitGroup().Done()
				}()
			}

			gs.Shutdown(tt.exitCode)

			assert.True(t, exitCalled, "exit function should be called")
			assert.Equal(t, tt.exitCode, capturedExitCode)
			assert.Error(t, gs.Context().Err(), "context should be cancelled")
		})
	}
}

// TestGracefulShutdown_ShutdownIdempotency verifies concurrent Shutdown calls
// run the shutdown sequence exactly once.
func TestGracefulShutdown_ShutdownIdempotency(t *testing.T) {
	exitCallCount := 0
	var mu sync.Mutex
	gs := gracefulshutdown.NewWithExit("test", func(int) {
		mu.Lock()
		defer mu.Unlock()
		exitCallCount++
	})

	const concurrentCalls = 10
	var wg sync.WaitGroup
	for i := 0; i < concurrentCalls; i++ {
		wg.Add(1)
		go func(exitCode int) {
			defer wg.Done()
			gs.Shutdown(exitCode)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, exitCallCount, "exit should be called exactly once")
}
