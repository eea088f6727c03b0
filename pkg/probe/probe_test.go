//go:build unit

package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPProber(t *testing.T) {
	prober := &TCPProber{Timeout: 2 * time.Second}

	t.Run("open port", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		defer listener.Close()

		port := listener.Addr().(*net.TCPAddr).Port
		result := prober.Probe(context.Background(), "127.0.0.1", port)

		assert.Equal(t, StatusOpen, result.Status)
		assert.True(t, result.Open())
		assert.NoError(t, result.Err)
	})

	t.Run("closed port", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		port := listener.Addr().(*net.TCPAddr).Port
		require.NoError(t, listener.Close())

		result := prober.Probe(context.Background(), "127.0.0.1", port)

		assert.Equal(t, StatusClosed, result.Status)
		assert.False(t, result.Open())
	})

	t.Run("unreachable host", func(t *testing.T) {
		short := &TCPProber{Timeout: 100 * time.Millisecond}

		// TEST-NET-1 is never assigned; most environments blackhole it,
		// some reject it outright.
		result := short.Probe(context.Background(), "192.0.2.1", 81)

		assert.Contains(t, []Status{StatusTimeout, StatusClosed}, result.Status)
		assert.False(t, result.Open())
	})

	t.Run("cancelled context is an error, not a closed port", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := prober.Probe(ctx, "192.0.2.1", 81)

		assert.Equal(t, StatusError, result.Status)
		assert.Error(t, result.Err)
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "open", StatusOpen.String())
	assert.Equal(t, "closed", StatusClosed.String())
	assert.Equal(t, "timeout", StatusTimeout.String())
	assert.Equal(t, "error", StatusError.String())
}
