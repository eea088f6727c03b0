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

// Package onecli implements directory.Client on top of the cluster's CLI
// tools (onetemplate, onevm), parsing their XML output. Authentication is
// left to the tools themselves (ONE_AUTH, ONE_XMLRPC).
package onecli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/shell"
)

const (
	defaultTemplateCommand = "onetemplate"
	defaultVMCommand       = "onevm"
)

var (
	errListTemplates = errors.New("listing templates")
	errInstantiate   = errors.New("instantiating template")
	errListVMs       = errors.New("listing vms")
	errTerminate     = errors.New("terminating vm")
	errParseOutput   = errors.New("parsing command output")

	vmIDRegexp = regexp.MustCompile(`VM ID:\s*(\d+)`)
)

// Options configures the client. The zero value selects the standard tool
// names from PATH.
type Options struct {
	// TemplateCommand is the template tool, "onetemplate" by default.
	TemplateCommand string
	// VMCommand is the VM tool, "onevm" by default.
	VMCommand string
}

// New returns a directory.Client backed by the cluster's CLI tools, executed
// through the given runner.
func New(runner shell.Runner, opts Options) directory.Client {
	if opts.TemplateCommand == "" {
		opts.TemplateCommand = defaultTemplateCommand
	}

	if opts.VMCommand == "" {
		opts.VMCommand = defaultVMCommand
	}

	return &client{
		runner:          runner,
		templateCommand: opts.TemplateCommand,
		vmCommand:       opts.VMCommand,
	}
}

type client struct {
	runner          shell.Runner
	templateCommand string
	vmCommand       string
}

func (c *client) ListTemplates(ctx context.Context) ([]directory.Template, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.templateCommand, "list", "--xml")
	if err != nil {
		return nil, providerErr("list templates", stderr, errors.Join(err, errListTemplates))
	}

	pool, err := parseTemplatePool([]byte(stdout))
	if err != nil {
		return nil, errors.Join(err, errParseOutput, errListTemplates)
	}

	templates := make([]directory.Template, 0, len(pool.Templates))
	for _, tpl := range pool.Templates {
		templates = append(templates, directory.Template{ID: tpl.ID, Name: tpl.Name})
	}

	return templates, nil
}

func (c *client) FindTemplateByName(
	ctx context.Context,
	name string,
) (directory.Template, error) {
	templates, err := c.ListTemplates(ctx)
	if err != nil {
		return directory.Template{}, err
	}

	for _, tpl := range templates {
		if tpl.Name == name {
			return tpl, nil
		}
	}

	return directory.Template{}, fmt.Errorf("%q: %w", name, directory.ErrTemplateNotFound)
}

func (c *client) Instantiate(
	ctx context.Context,
	tpl directory.Template,
	vmName string,
) (int, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.templateCommand,
		"instantiate", strconv.Itoa(tpl.ID), "--name", vmName)
	if err != nil {
		return 0, providerErr("instantiate", stderr, errors.Join(err, errInstantiate))
	}

	match := vmIDRegexp.FindStringSubmatch(stdout)
	if match == nil {
		return 0, errors.Join(
			fmt.Errorf("no VM id in output %q", stdout),
			errParseOutput, errInstantiate)
	}

	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, errors.Join(err, errParseOutput, errInstantiate)
	}

	return id, nil
}

func (c *client) ListVMs(ctx context.Context) ([]directory.VM, error) {
	stdout, stderr, err := c.runner.Run(ctx, c.vmCommand, "list", "--xml")
	if err != nil {
		return nil, providerErr("list vms", stderr, errors.Join(err, errListVMs))
	}

	pool, err := parseVMPool([]byte(stdout))
	if err != nil {
		return nil, errors.Join(err, errParseOutput, errListVMs)
	}

	vms := make([]directory.VM, 0, len(pool.VMs))
	for _, rec := range pool.VMs {
		vms = append(vms, rec.toVM())
	}

	return vms, nil
}

func (c *client) FindVMByID(ctx context.Context, id int) (directory.VM, error) {
	vms, err := c.ListVMs(ctx)
	if err != nil {
		return directory.VM{}, err
	}

	for _, vm := range vms {
		if vm.ID == id {
			return vm, nil
		}
	}

	return directory.VM{}, fmt.Errorf("id %d: %w", id, directory.ErrVMNotFound)
}

func (c *client) Finalize(ctx context.Context, id int) error {
	_, stderr, err := c.runner.Run(ctx, c.vmCommand,
		"terminate", "--hard", strconv.Itoa(id))
	if err != nil {
		return providerErr("terminate", stderr, errors.Join(err, errTerminate))
	}

	return nil
}

func providerErr(op, stderr string, err error) error {
	return &directory.ProviderError{Op: op, Output: stderr, Err: err}
}
