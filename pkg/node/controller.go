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

// Package node provisions a single ephemeral test VM on the directory and
// drives it through its lifecycle: creation, IP discovery, bootstrap, health
// polling and teardown.
package node

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/alexandremahdhaoui/testenv-vm/internal/metrics"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/probe"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/screen"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/shell"
)

var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrNoVM indicates the controller holds no VM handle.
	ErrNoVM = errors.New("no vm attached")
	// ErrNoNIC indicates the VM's hardware template carries no NIC.
	ErrNoNIC = errors.New("vm has no nic")
	// ErrNoMapper indicates no address mapper was configured.
	ErrNoMapper = errors.New("no address mapper configured")
	// ErrRetriesExhausted indicates instantiation failed on every attempt.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrTimeoutExceeded indicates a polling loop ran out of budget.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrNoScreen indicates no screen automator was configured.
	ErrNoScreen = errors.New("no screen automator configured")
)

const (
	DefaultCreateAttempts     = 5
	DefaultCreateBackoff      = 2 * time.Second
	DefaultSSHPollBudget      = 30
	DefaultSSHPollInterval    = 15 * time.Second
	DefaultHealthPollBudget   = 60
	DefaultHealthPollInterval = 10 * time.Second
	DefaultSSHPort            = 22
	DefaultBootstrapCommand   = "knife"
	DefaultSSHUser            = "root"
)

// vmNameTimeFormat stamps instantiated VM names so repeated runs under the
// same node name stay unique in the directory.
const vmNameTimeFormat = "20060102T150405Z"

// Config wires a Controller's collaborators and bounds. The zero value of
// every field except Directory is usable.
type Config struct {
	// Directory is the VM directory client. Required.
	Directory directory.Client
	// Runner executes the bootstrap tooling. Defaults to a local
	// shell.ExecRunner.
	Runner shell.Runner
	// Prober checks SSH reachability. Defaults to a probe.TCPProber.
	Prober probe.Prober
	// Mapper resolves the node's IP from its MAC address. Required for
	// IP discovery and bootstrap.
	Mapper probe.AddressMapper
	// Screen is optional; console operations fail with ErrNoScreen
	// without it.
	Screen screen.Automator
	// Log may be left as the zero value for silence.
	Log logr.Logger

	// CreateAttempts bounds instantiation retries.
	CreateAttempts int
	// CreateBackoff is the initial retry backoff; it doubles per attempt.
	CreateBackoff time.Duration
	// SSHPollBudget bounds the SSH reachability polls before bootstrap.
	SSHPollBudget int
	// SSHPollInterval separates SSH reachability polls.
	SSHPollInterval time.Duration
	// HealthPollBudget bounds the boot-state polls of Healthy.
	HealthPollBudget int
	// HealthPollInterval separates boot-state polls.
	HealthPollInterval time.Duration

	// BootstrapCommand is the bootstrap tool, "knife" by default.
	BootstrapCommand string
	// SSHUser is substituted into bootstrap when the options carry none.
	SSHUser string
	// SSHPassword is substituted into bootstrap when the options carry
	// none.
	SSHPassword string
}

// Controller owns at most one directory VM and its cached IP address.
//
// A Controller is not safe for concurrent use: exactly one goroutine may
// drive it at a time.
type Controller struct {
	name      string
	dir       directory.Client
	runner    shell.Runner
	prober    probe.Prober
	mapper    probe.AddressMapper
	automator screen.Automator
	log       logr.Logger

	createAttempts     int
	createBackoff      time.Duration
	sshPollBudget      int
	sshPollInterval    time.Duration
	healthPollBudget   int
	healthPollInterval time.Duration

	bootstrapCommand string
	sshUser          string
	sshPassword      string

	vm *directory.VM
	ip string
}

// New provisions a VM from the named template and returns a controller bound
// to it. Instantiation is retried with doubling backoff; the budget running
// out surfaces as ErrRetriesExhausted wrapping the last cause.
func New(
	ctx context.Context,
	name, templateName string,
	cfg Config,
) (_ *Controller, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("create", start, err == nil) }()

	c, err := newController(name, cfg)
	if err != nil {
		return nil, err
	}

	tpl, err := c.dir.FindTemplateByName(ctx, templateName)
	if err != nil {
		return nil, err
	}

	if err = c.instantiate(ctx, tpl); err != nil {
		return nil, err
	}

	return c, nil
}

// Attach binds a controller to an existing VM, typically one reloaded from a
// stored node record.
func Attach(
	ctx context.Context,
	name string,
	vmID int,
	cfg Config,
) (*Controller, error) {
	c, err := newController(name, cfg)
	if err != nil {
		return nil, err
	}

	vm, err := c.dir.FindVMByID(ctx, vmID)
	if err != nil {
		return nil, err
	}

	c.vm = &vm

	return c, nil
}

func newController(name string, cfg Config) (*Controller, error) {
	if name == "" {
		return nil, fmt.Errorf("node name is required: %w", ErrInvalidConfig)
	}

	if cfg.Directory == nil {
		return nil, fmt.Errorf("directory client is required: %w", ErrInvalidConfig)
	}

	c := &Controller{
		name:               name,
		dir:                cfg.Directory,
		runner:             cfg.Runner,
		prober:             cfg.Prober,
		mapper:             cfg.Mapper,
		automator:          cfg.Screen,
		log:                cfg.Log,
		createAttempts:     cfg.CreateAttempts,
		createBackoff:      cfg.CreateBackoff,
		sshPollBudget:      cfg.SSHPollBudget,
		sshPollInterval:    cfg.SSHPollInterval,
		healthPollBudget:   cfg.HealthPollBudget,
		healthPollInterval: cfg.HealthPollInterval,
		bootstrapCommand:   cfg.BootstrapCommand,
		sshUser:            cfg.SSHUser,
		sshPassword:        cfg.SSHPassword,
	}

	if c.runner == nil {
		c.runner = &shell.ExecRunner{}
	}

	if c.prober == nil {
		c.prober = &probe.TCPProber{}
	}

	if c.createAttempts <= 0 {
		c.createAttempts = DefaultCreateAttempts
	}

	if c.createBackoff <= 0 {
		c.createBackoff = DefaultCreateBackoff
	}

	if c.sshPollBudget <= 0 {
		c.sshPollBudget = DefaultSSHPollBudget
	}

	if c.sshPollInterval <= 0 {
		c.sshPollInterval = DefaultSSHPollInterval
	}

	if c.healthPollBudget <= 0 {
		c.healthPollBudget = DefaultHealthPollBudget
	}

	if c.healthPollInterval <= 0 {
		c.healthPollInterval = DefaultHealthPollInterval
	}

	if c.bootstrapCommand == "" {
		c.bootstrapCommand = DefaultBootstrapCommand
	}

	if c.sshUser == "" {
		c.sshUser = DefaultSSHUser
	}

	return c, nil
}

func (c *Controller) instantiate(ctx context.Context, tpl directory.Template) error {
	backoff := c.createBackoff

	var lastErr error

	for attempt := 1; attempt <= c.createAttempts; attempt++ {
		if attempt > 1 {
			c.log.Info("retrying instantiation",
				"template", tpl.Name, "attempt", attempt, "backoff", backoff.String())

			if err := sleep(ctx, backoff); err != nil {
				return err
			}

			backoff *= 2
		}

		vmName := fmt.Sprintf("%s-%s", c.name, time.Now().UTC().Format(vmNameTimeFormat))

		id, err := c.dir.Instantiate(ctx, tpl, vmName)
		if err != nil {
			lastErr = err

			continue
		}

		vm, err := c.dir.FindVMByID(ctx, id)
		if err != nil {
			lastErr = err

			// Release the half-created VM before retrying.
			if ferr := c.dir.Finalize(ctx, id); ferr != nil {
				c.log.Error(ferr, "releasing failed instantiation", "vm_id", id)
			}

			continue
		}

		c.vm = &vm
		c.log.Info("vm instantiated", "vm_id", id, "vm_name", vmName)

		return nil
	}

	return errors.Join(lastErr, ErrRetriesExhausted)
}

// Locate returns the VM with the given id from a fresh directory listing.
func (c *Controller) Locate(ctx context.Context, id int) (directory.VM, error) {
	return c.dir.FindVMByID(ctx, id)
}

// RefreshInfo replaces the VM handle with a freshly located record.
func (c *Controller) RefreshInfo(ctx context.Context) error {
	if c.vm == nil {
		return ErrNoVM
	}

	vm, err := c.dir.FindVMByID(ctx, c.vm.ID)
	if err != nil {
		return err
	}

	c.vm = &vm

	return nil
}

// ID returns the VM's numeric id after a refresh. It is stable for the
// lifetime of the VM handle.
func (c *Controller) ID(ctx context.Context) (int, error) {
	if err := c.RefreshInfo(ctx); err != nil {
		return 0, err
	}

	return c.vm.ID, nil
}

// ExternalName is the identity the node registers under with the
// config-management server: "<name>_<vm id>".
func (c *Controller) ExternalName(ctx context.Context) (string, error) {
	id, err := c.ID(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s_%d", c.name, id), nil
}

// IP returns the node's address on the lab subnet, discovering it through
// the address mapper on first use and caching it until Delete.
func (c *Controller) IP(ctx context.Context) (string, error) {
	if c.vm == nil {
		return "", ErrNoVM
	}

	if c.ip != "" {
		return c.ip, nil
	}

	ip, err := c.discoverIP(ctx)
	if err != nil {
		return "", err
	}

	c.ip = ip

	return ip, nil
}

func (c *Controller) discoverIP(ctx context.Context) (string, error) {
	if c.mapper == nil {
		return "", ErrNoMapper
	}

	if err := c.RefreshInfo(ctx); err != nil {
		return "", err
	}

	mac, ok := c.vm.PrimaryMAC()
	if !ok {
		return "", fmt.Errorf("vm %d: %w", c.vm.ID, ErrNoNIC)
	}

	ip, err := c.mapper.IPForMAC(ctx, mac)
	if err != nil {
		return "", fmt.Errorf("discovering ip of vm %d: %w", c.vm.ID, err)
	}

	c.log.Info("ip discovered", "vm_id", c.vm.ID, "mac", mac, "ip", ip)

	return ip, nil
}

// PortOpen probes a TCP port on the given host.
func (c *Controller) PortOpen(ctx context.Context, host string, port int) probe.Result {
	return c.prober.Probe(ctx, host, port)
}

// Healthy reports whether the VM reached the directory's running state. It
// keeps refreshing while the VM sits in an early boot sub-state, sleeping
// between polls, and gives up with ErrTimeoutExceeded once the poll budget
// is spent. Without a VM handle it reports false without error.
func (c *Controller) Healthy(ctx context.Context) (_ bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("health", start, err == nil) }()

	if c.vm == nil {
		return false, nil
	}

	for poll := 0; poll < c.healthPollBudget; poll++ {
		if err := c.RefreshInfo(ctx); err != nil {
			return false, err
		}

		if !c.vm.Booting() {
			healthy := c.vm.State == directory.StateActive
			c.log.Info("vm health checked",
				"vm_id", c.vm.ID, "state", c.vm.State.String(), "healthy", healthy)

			return healthy, nil
		}

		if err := sleep(ctx, c.healthPollInterval); err != nil {
			return false, err
		}
	}

	return false, fmt.Errorf("vm %d still booting after %d polls: %w",
		c.vm.ID, c.healthPollBudget, ErrTimeoutExceeded)
}

// Delete deregisters the node from the config-management server, finalizes
// the VM and clears the handle and cached IP. Without a VM handle it is a
// no-op reporting false. Deregistration failures are logged only; a finalize
// failure keeps the handle so the caller can retry.
func (c *Controller) Delete(ctx context.Context) (_ bool, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation("delete", start, err == nil) }()

	if c.vm == nil {
		return false, nil
	}

	c.deregisterNode(ctx)

	if err := c.dir.Finalize(ctx, c.vm.ID); err != nil {
		return false, err
	}

	c.log.Info("vm deleted", "vm_id", c.vm.ID)
	c.vm = nil
	c.ip = ""

	return true, nil
}

func (c *Controller) deregisterNode(ctx context.Context) {
	name := fmt.Sprintf("%s_%d", c.name, c.vm.ID)

	_, _, err := c.runner.Run(ctx, c.bootstrapCommand, "node", "delete", name, "-y")
	if err != nil {
		c.log.Error(err, "deregistering node failed", "node", name)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
