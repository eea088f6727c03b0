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

// Package runnerfake provides a scripted shell.Runner for tests. Commands are
// consumed in order; each expectation inspects the invocation and returns the
// outputs the test wants the caller to see.
package runnerfake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type Expectation = func(
	ctx context.Context,
	stdin, name string,
	args []string,
) (stdout, stderr string, err error)

type Fake struct {
	t            *testing.T
	expectations []Expectation
	counter      int
}

func New(t *testing.T) *Fake {
	t.Helper()

	return &Fake{t: t}
}

func (f *Fake) Run(
	ctx context.Context,
	name string,
	args ...string,
) (string, string, error) {
	return f.RunInput(ctx, "", name, args...)
}

func (f *Fake) RunInput(
	ctx context.Context,
	stdin, name string,
	args ...string,
) (string, string, error) {
	f.t.Helper()

	require.Less(f.t, f.counter, len(f.expectations),
		"unexpected command %q %v", name, args)

	counter := f.counter
	f.counter++

	return f.expectations[counter](ctx, stdin, name, args)
}

func (f *Fake) AppendExpectation(expectation Expectation) *Fake {
	f.expectations = append(f.expectations, expectation)

	return f
}

// AssertExpectations fails the test unless every scripted command ran.
func (f *Fake) AssertExpectations() {
	f.t.Helper()

	require.Equal(f.t, len(f.expectations), f.counter,
		"expected %d commands, got %d", len(f.expectations), f.counter)
}
