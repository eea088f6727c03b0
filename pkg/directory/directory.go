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

// Package directory models the VM directory: the virtualization cluster that
// owns templates and virtual machines. A Client translates the operations the
// node controller needs into provider calls.
package directory

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrTemplateNotFound is returned when no template matches a lookup.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrVMNotFound is returned when no VM matches a lookup.
	ErrVMNotFound = errors.New("vm not found")
)

// --------------------------------------------------- INTERFACES --------------------------------------------------- //

// Client talks to the VM directory. Lookups return ErrTemplateNotFound or
// ErrVMNotFound when nothing matches; failures reported by the provider are
// wrapped in *ProviderError.
type Client interface {
	// ListTemplates returns every instantiable template.
	ListTemplates(ctx context.Context) ([]Template, error)
	// FindTemplateByName returns the template whose name matches exactly.
	FindTemplateByName(ctx context.Context, name string) (Template, error)
	// Instantiate creates a VM named vmName from the given template and
	// returns the numeric id of the new VM.
	Instantiate(ctx context.Context, tpl Template, vmName string) (int, error)
	// ListVMs returns every VM visible to the caller.
	ListVMs(ctx context.Context) ([]VM, error)
	// FindVMByID returns the VM with the given id from a fresh listing.
	FindVMByID(ctx context.Context, id int) (VM, error)
	// Finalize terminates the VM and releases its resources.
	Finalize(ctx context.Context, id int) error
}

// ----------------------------------------------------- ERRORS ----------------------------------------------------- //

// ProviderError reports an operation the directory refused or failed,
// carrying the provider's own message.
type ProviderError struct {
	// Op is the directory operation that failed, e.g. "instantiate".
	Op string
	// Output is the provider's message, usually the tool's stderr.
	Output string
	// Err is the underlying cause.
	Err error
}

func (e *ProviderError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("directory %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("directory %s: %v: %s", e.Op, e.Err, e.Output)
}

func (e *ProviderError) Unwrap() error { return e.Err }
