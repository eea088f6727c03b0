// Package probe checks network reachability of provisioned nodes and maps
// their hardware addresses to IPs on the lab subnet.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"
)

// DefaultDialTimeout bounds a single port probe.
const DefaultDialTimeout = 10 * time.Second

// Status classifies the outcome of a port probe.
type Status int

const (
	// StatusError covers failures that are neither a refused connection nor
	// a timeout; the cause rides on Result.Err.
	StatusError Status = iota
	StatusOpen
	StatusClosed
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusTimeout:
		return "timeout"
	default:
		return "error"
	}
}

// Result is the outcome of a single probe.
type Result struct {
	Status Status
	// Err is set when Status is StatusError.
	Err error
}

// Open reports whether the probed port accepted a connection.
func (r Result) Open() bool { return r.Status == StatusOpen }

// ---------------------------------------------------- INTERFACES ---------------------------------------------------- //

// Prober checks whether a TCP port accepts connections.
type Prober interface {
	Probe(ctx context.Context, host string, port int) Result
}

// AddressMapper resolves the IP address a node obtained from its MAC
// address.
type AddressMapper interface {
	IPForMAC(ctx context.Context, mac string) (string, error)
}

// ---------------------------------------------------- TCP PROBER ---------------------------------------------------- //

// TCPProber probes by dialing. The zero value uses DefaultDialTimeout.
type TCPProber struct {
	Timeout time.Duration
}

var _ Prober = (*TCPProber)(nil)

func (p *TCPProber) Probe(ctx context.Context, host string, port int) Result {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err == nil {
		_ = conn.Close()

		return Result{Status: StatusOpen}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Status: StatusTimeout}
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return Result{Status: StatusClosed}
	}

	return Result{Status: StatusError, Err: fmt.Errorf("probing %s: %w", addr, err)}
}
