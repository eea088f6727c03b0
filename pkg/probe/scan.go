package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/alexandremahdhaoui/testenv-vm/pkg/shell"
)

const (
	// DefaultScanAttempts bounds the subnet sweeps per lookup.
	DefaultScanAttempts = 20
	// DefaultScanInterval separates consecutive sweeps.
	DefaultScanInterval = 5 * time.Second
	// DefaultScanLineOffset is how many lines above the MAC match the
	// scanner prints the address line.
	DefaultScanLineOffset = 2
)

// ErrAddressNotFound is returned when no lookup source knows the MAC.
var ErrAddressNotFound = errors.New("address not found")

var ipv4Regexp = regexp.MustCompile(`(?:\d{1,3}\.){3}\d{1,3}`)

// ScanMapper finds a node's IP by sweeping the lab subnet with a privileged
// scanner and extracting the address printed LineOffset lines above the MAC
// in the report.
//
// The report is meant for humans: the fixed offset breaks whenever the
// scanner changes its layout. Prefer LeaseMapper when the DHCP lease table
// is reachable, or chain both with FallbackMapper.
type ScanMapper struct {
	Runner shell.Runner
	// Subnet is the CIDR swept by the default command, e.g. "192.168.0.0/24".
	Subnet string
	// SudoPassword is fed to sudo on stdin (-S). Empty runs unprivileged.
	SudoPassword string
	// Command overrides the scanner argv; it must include the target range.
	Command []string
	// Attempts bounds the sweeps, DefaultScanAttempts when zero.
	Attempts int
	// Interval separates sweeps, DefaultScanInterval when zero.
	Interval time.Duration
	// LineOffset overrides DefaultScanLineOffset when positive.
	LineOffset int
	// Log may be left as the zero value for silence.
	Log logr.Logger
}

var _ AddressMapper = (*ScanMapper)(nil)

func (m *ScanMapper) IPForMAC(ctx context.Context, mac string) (string, error) {
	attempts := m.Attempts
	if attempts <= 0 {
		attempts = DefaultScanAttempts
	}

	interval := m.Interval
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	offset := m.LineOffset
	if offset <= 0 {
		offset = DefaultScanLineOffset
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(interval):
			}
		}

		report, err := m.scan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}

			m.Log.V(1).Info("subnet scan failed", "attempt", attempt, "err", err)

			continue
		}

		if ip, ok := findIPForMAC(report, mac, offset); ok {
			return ip, nil
		}

		m.Log.V(1).Info("mac not in scan report", "attempt", attempt, "mac", mac)
	}

	return "", fmt.Errorf("mac %s after %d scans: %w", mac, attempts, ErrAddressNotFound)
}

func (m *ScanMapper) scan(ctx context.Context) (string, error) {
	command := m.Command
	if len(command) == 0 {
		command = []string{"nmap", "-sn", "-n", m.Subnet}
	}

	if m.SudoPassword == "" {
		stdout, _, err := m.Runner.Run(ctx, command[0], command[1:]...)

		return stdout, err
	}

	args := append([]string{"-S", "-p", ""}, command...)
	stdout, _, err := m.Runner.RunInput(ctx, m.SudoPassword+"\n", "sudo", args...)

	return stdout, err
}

// findIPForMAC searches the report for the MAC (case-insensitive) and pulls
// an IPv4 address out of the line offset lines above the match.
func findIPForMAC(report, mac string, offset int) (string, bool) {
	needle := strings.ToLower(mac)
	lines := strings.Split(report, "\n")

	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}

		if i < offset {
			continue
		}

		candidate := ipv4Regexp.FindString(lines[i-offset])
		if candidate == "" || net.ParseIP(candidate) == nil {
			continue
		}

		return candidate, true
	}

	return "", false
}
