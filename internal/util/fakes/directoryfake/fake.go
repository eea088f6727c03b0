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

// Package directoryfake provides an in-memory directory.Client for tests,
// with hooks to script failures and per-VM state sequences.
package directoryfake

import (
	"context"
	"testing"

	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
)

// DefaultMAC is assigned to the NIC of every VM created through Instantiate.
const DefaultMAC = "02:00:c0:a8:00:66"

type Fake struct {
	t *testing.T

	templates []directory.Template
	vms       map[int]directory.VM
	nextID    int

	instantiateErrs []error
	failLocates     int
	vmScripts       map[int][]directory.VM
	finalizeErr     error

	// InstantiatedNames records the vmName of every Instantiate call.
	InstantiatedNames []string
	// FinalizedIDs records the id of every Finalize call.
	FinalizedIDs []int
	// Lookups counts FindVMByID calls.
	Lookups int
}

var _ directory.Client = (*Fake)(nil)

func New(t *testing.T) *Fake {
	t.Helper()

	return &Fake{
		t:         t,
		vms:       map[int]directory.VM{},
		vmScripts: map[int][]directory.VM{},
		nextID:    100,
	}
}

// ------------------------------------------------- TEST HOOKS ------------------------------------------------- //

func (f *Fake) AddTemplate(tpl directory.Template) *Fake {
	f.templates = append(f.templates, tpl)

	return f
}

func (f *Fake) PutVM(vm directory.VM) *Fake {
	f.vms[vm.ID] = vm

	return f
}

// ScriptVM queues states returned by successive FindVMByID calls for the
// given id. Once the script is drained, lookups fall back to the stored VM.
func (f *Fake) ScriptVM(id int, states ...directory.VM) *Fake {
	f.vmScripts[id] = append(f.vmScripts[id], states...)

	return f
}

// FailInstantiate queues errors returned by successive Instantiate calls
// before instantiation starts succeeding again.
func (f *Fake) FailInstantiate(errs ...error) *Fake {
	f.instantiateErrs = append(f.instantiateErrs, errs...)

	return f
}

// FailNextLocates makes the next n FindVMByID calls miss.
func (f *Fake) FailNextLocates(n int) *Fake {
	f.failLocates = n

	return f
}

func (f *Fake) FailFinalize(err error) *Fake {
	f.finalizeErr = err

	return f
}

// ------------------------------------------------- directory.Client ------------------------------------------------- //

func (f *Fake) ListTemplates(_ context.Context) ([]directory.Template, error) {
	return append([]directory.Template{}, f.templates...), nil
}

func (f *Fake) FindTemplateByName(
	_ context.Context,
	name string,
) (directory.Template, error) {
	for _, tpl := range f.templates {
		if tpl.Name == name {
			return tpl, nil
		}
	}

	return directory.Template{}, directory.ErrTemplateNotFound
}

func (f *Fake) Instantiate(
	_ context.Context,
	_ directory.Template,
	vmName string,
) (int, error) {
	f.InstantiatedNames = append(f.InstantiatedNames, vmName)

	if len(f.instantiateErrs) > 0 {
		err := f.instantiateErrs[0]
		f.instantiateErrs = f.instantiateErrs[1:]

		return 0, err
	}

	f.nextID++
	id := f.nextID
	f.vms[id] = directory.VM{
		ID:       id,
		Name:     vmName,
		State:    directory.StatePending,
		LCMState: directory.LCMInit,
		Template: directory.VMTemplate{NICs: []directory.NIC{{MAC: DefaultMAC}}},
	}

	return id, nil
}

func (f *Fake) ListVMs(_ context.Context) ([]directory.VM, error) {
	vms := make([]directory.VM, 0, len(f.vms))
	for _, vm := range f.vms {
		vms = append(vms, vm)
	}

	return vms, nil
}

func (f *Fake) FindVMByID(_ context.Context, id int) (directory.VM, error) {
	f.Lookups++

	if f.failLocates > 0 {
		f.failLocates--

		return directory.VM{}, directory.ErrVMNotFound
	}

	if script := f.vmScripts[id]; len(script) > 0 {
		vm := script[0]
		f.vmScripts[id] = script[1:]
		f.vms[id] = vm

		return vm, nil
	}

	vm, ok := f.vms[id]
	if !ok {
		return directory.VM{}, directory.ErrVMNotFound
	}

	return vm, nil
}

func (f *Fake) Finalize(_ context.Context, id int) error {
	if f.finalizeErr != nil {
		return f.finalizeErr
	}

	f.FinalizedIDs = append(f.FinalizedIDs, id)
	delete(f.vms, id)

	return nil
}
