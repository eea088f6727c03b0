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

package node

import (
	"context"
	"fmt"
	"time"

	"github.com/alexandremahdhaoui/testenv-vm/internal/metrics"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/probe"
)

// BootstrapOptions selects what the bootstrap tool installs on the node.
// Empty fields are omitted from the command; empty credentials fall back to
// the controller's configured defaults.
type BootstrapOptions struct {
	// SSHUser overrides the configured bootstrap SSH user.
	SSHUser string
	// SSHPassword overrides the configured bootstrap SSH password.
	SSHPassword string
	// ConfigPath adds "--config <path>".
	ConfigPath string
	// RunList adds "-r <run list>".
	RunList string
	// AttributesJSON adds "-j <json>".
	AttributesJSON string
}

// BootstrapCommand resolves the node's IP and external name and returns the
// full bootstrap argument vector. The vector is executed as-is, never
// through a shell.
func (c *Controller) BootstrapCommand(
	ctx context.Context,
	opts BootstrapOptions,
) ([]string, error) {
	if c.vm == nil {
		return nil, ErrNoVM
	}

	ip, err := c.IP(ctx)
	if err != nil {
		return nil, err
	}

	externalName, err := c.ExternalName(ctx)
	if err != nil {
		return nil, err
	}

	return c.bootstrapArgs(ip, externalName, opts), nil
}

func (c *Controller) bootstrapArgs(
	ip, externalName string,
	opts BootstrapOptions,
) []string {
	user := opts.SSHUser
	if user == "" {
		user = c.sshUser
	}

	password := opts.SSHPassword
	if password == "" {
		password = c.sshPassword
	}

	args := []string{
		c.bootstrapCommand, "bootstrap", ip,
		"-x", user,
		"-P", password,
		"-N", externalName,
	}

	if opts.ConfigPath != "" {
		args = append(args, "--config", opts.ConfigPath)
	}

	if opts.RunList != "" {
		args = append(args, "-r", opts.RunList)
	}

	if opts.AttributesJSON != "" {
		args = append(args, "-j", opts.AttributesJSON)
	}

	return args
}

// Bootstrap waits for the node's SSH port and runs the bootstrap tool
// against it. A failing bootstrap process is logged and reported as false
// without error; reachability running out of budget is ErrTimeoutExceeded.
func (c *Controller) Bootstrap(
	ctx context.Context,
	opts BootstrapOptions,
) (_ bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("bootstrap", start, err == nil) }()

	if c.vm == nil {
		return false, ErrNoVM
	}

	ip, err := c.IP(ctx)
	if err != nil {
		return false, err
	}

	externalName, err := c.ExternalName(ctx)
	if err != nil {
		return false, err
	}

	if err = c.awaitSSH(ctx, ip); err != nil {
		return false, err
	}

	argv := c.bootstrapArgs(ip, externalName, opts)

	c.log.Info("bootstrapping node", "node", externalName, "ip", ip)

	if _, _, runErr := c.runner.Run(ctx, argv[0], argv[1:]...); runErr != nil {
		c.log.Error(runErr, "bootstrap failed", "node", externalName)

		return false, nil
	}

	c.log.Info("node bootstrapped", "node", externalName)

	return true, nil
}

func (c *Controller) awaitSSH(ctx context.Context, ip string) error {
	for poll := 1; poll <= c.sshPollBudget; poll++ {
		result := c.prober.Probe(ctx, ip, DefaultSSHPort)

		switch result.Status {
		case probe.StatusOpen:
			return nil
		case probe.StatusError:
			return result.Err
		case probe.StatusClosed, probe.StatusTimeout:
			// Still booting, keep waiting.
		}

		if poll < c.sshPollBudget {
			if err := sleep(ctx, c.sshPollInterval); err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("ssh port of %s closed after %d probes: %w",
		ip, c.sshPollBudget, ErrTimeoutExceeded)
}
