package probe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// LeaseMapper resolves a MAC from a dnsmasq-format lease table:
// one lease per line, "<expiry> <mac> <ip> <hostname> <client-id>".
type LeaseMapper struct {
	// Path to the lease file, e.g. /var/lib/misc/dnsmasq.leases.
	Path string
}

var _ AddressMapper = (*LeaseMapper)(nil)

func (m *LeaseMapper) IPForMAC(_ context.Context, mac string) (string, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return "", fmt.Errorf("reading lease table %s: %w", m.Path, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		if strings.EqualFold(fields[1], mac) {
			return fields[2], nil
		}
	}

	return "", fmt.Errorf("mac %s not in %s: %w", mac, m.Path, ErrAddressNotFound)
}

// FallbackMapper tries each mapper in order and returns the first hit.
type FallbackMapper []AddressMapper

var _ AddressMapper = (FallbackMapper)(nil)

func (m FallbackMapper) IPForMAC(ctx context.Context, mac string) (string, error) {
	var errs error

	for _, mapper := range m {
		ip, err := mapper.IPForMAC(ctx, mac)
		if err == nil {
			return ip, nil
		}

		errs = errors.Join(errs, err)
	}

	if errs == nil {
		errs = ErrAddressNotFound
	}

	return "", errs
}
